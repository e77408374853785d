package projectcmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/geonosis/console/internal/badge"
	"github.com/geonosis/console/internal/model"
)

const (
	outputJSON = "json"
	timeLayout = "2006-01-02 15:04"
)

func printJSON(stdout io.Writer, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(stdout, string(raw))
	return err
}

func printProjectList(output string, stdout io.Writer, projects []model.ProjectListItem) error {
	if output == outputJSON {
		if projects == nil {
			projects = []model.ProjectListItem{}
		}
		return printJSON(stdout, projects)
	}

	if len(projects) == 0 {
		_, err := fmt.Fprintln(stdout, "No projects yet")
		return err
	}

	tw := tabwriter.NewWriter(stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "ID\tNAME\tTYPE\tSTATUS\tFEATURES\tCREATED")
	for _, p := range projects {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%s\n",
			p.ID,
			p.Name,
			badge.ForType(p.Type).Label,
			badge.ForStatus(p.Status).Label,
			p.FeatureCount,
			formatTime(p.CreatedAt.Time),
		)
	}
	return tw.Flush()
}

func printProject(output string, stdout io.Writer, project model.Project) error {
	if output == outputJSON {
		return printJSON(stdout, project)
	}

	tw := tabwriter.NewWriter(stdout, 0, 0, 1, ' ', 0)
	_, _ = fmt.Fprintf(tw, "ID:\t%s\n", project.ID)
	_, _ = fmt.Fprintf(tw, "Name:\t%s\n", project.Name)
	_, _ = fmt.Fprintf(tw, "Type:\t%s\n", badge.ForType(project.Type).Label)
	_, _ = fmt.Fprintf(tw, "Status:\t%s\n", badge.ForStatus(project.Status).Label)
	_, _ = fmt.Fprintf(tw, "Created:\t%s\n", formatTime(project.CreatedAt.Time))
	if project.WasUpdated() {
		_, _ = fmt.Fprintf(tw, "Updated:\t%s\n", formatTime(project.UpdatedAt.Time))
	}
	if url := project.RepoURL(); url != "" {
		_, _ = fmt.Fprintf(tw, "Repository:\t%s (%s)\n", project.RepoLabel(), url)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	_, err := fmt.Fprintf(stdout, "\nEpic:\n%s\n", strings.TrimRight(project.Epic, "\n"))
	return err
}

func printDeleted(output string, stdout io.Writer, id string) error {
	if output == outputJSON {
		return printJSON(stdout, map[string]any{"id": id, "deleted": true})
	}
	_, err := fmt.Fprintf(stdout, "Deleted project %s\n", id)
	return err
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.UTC().Format(timeLayout)
}
