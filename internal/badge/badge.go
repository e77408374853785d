// Package badge maps project enums to display labels and style classes.
package badge

import "github.com/geonosis/console/internal/model"

type Tone string

const (
	ToneNeutral   Tone = "neutral"
	ToneInfo      Tone = "info"
	ToneAttention Tone = "attention"
	ToneNegative  Tone = "negative"
	TonePositive  Tone = "positive"
	ToneActive    Tone = "active"
	ToneSuccess   Tone = "success"
	TonePrimary   Tone = "primary"
)

const baseClass = "badge"

type Badge struct {
	Label string
	Tone  Tone
	Class string
}

func (b Badge) String() string {
	return b.Label
}

func newBadge(label string, tone Tone) Badge {
	return Badge{Label: label, Tone: tone, Class: baseClass + " " + baseClass + "-" + string(tone)}
}

// fallback keeps unknown values visible without styling.
func fallback(raw string) Badge {
	return Badge{Label: raw, Class: baseClass}
}

func ForStatus(status model.ProjectStatus) Badge {
	switch status {
	case model.ProjectStatusDraft:
		return newBadge("Draft", ToneNeutral)
	case model.ProjectStatusAnalyzing:
		return newBadge("Analyzing", ToneInfo)
	case model.ProjectStatusFeaturesPendingReview:
		return newBadge("Pending Review", ToneAttention)
	case model.ProjectStatusFeaturesRejected:
		return newBadge("Rejected", ToneNegative)
	case model.ProjectStatusApproved:
		return newBadge("Approved", TonePositive)
	case model.ProjectStatusRepoCreating:
		return newBadge("Creating Repo", ToneInfo)
	case model.ProjectStatusRepoCreated:
		return newBadge("Repo Created", ToneInfo)
	case model.ProjectStatusPBIsCreating:
		return newBadge("Creating PBIs", ToneInfo)
	case model.ProjectStatusInProgress:
		return newBadge("In Progress", ToneActive)
	case model.ProjectStatusCompleted:
		return newBadge("Completed", ToneSuccess)
	case model.ProjectStatusFailed:
		return newBadge("Failed", ToneNegative)
	default:
		return fallback(string(status))
	}
}

func ForType(projectType model.ProjectType) Badge {
	switch projectType {
	case model.ProjectTypeNewProject:
		return newBadge("New", TonePrimary)
	case model.ProjectTypeExistingProjectBug:
		return newBadge("Bug Fix", ToneNegative)
	case model.ProjectTypeExistingProjectFeature:
		return newBadge("Feature", ToneInfo)
	default:
		return fallback(string(projectType))
	}
}
