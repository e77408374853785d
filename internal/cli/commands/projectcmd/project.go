package projectcmd

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/geonosis/console/internal/cli/commands/common"
	"github.com/geonosis/console/internal/projectform"
	"github.com/spf13/cobra"
)

func New(runtime common.Runtime, stdout io.Writer, requestErr common.RequestErrorFunc, wrapErr common.WrapErrorFunc) *cobra.Command {
	projectCmd := &cobra.Command{
		Use:     "project",
		Aliases: []string{"projects", "proj"},
		Short:   "Manage projects.",
		Long:    "List, inspect, create, update, and delete Geonosis projects.",
	}

	listCmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List projects.",
		Long:    "List all projects, newest first.",
		Example: strings.TrimSpace(`geonosis project list
geonosis --output json proj ls`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			projects, err := runtime.Client().Projects.List(cmd.Context())
			if err != nil {
				return requestErr(err)
			}
			return printProjectList(runtime.Output(), stdout, projects)
		},
	}

	getCmd := &cobra.Command{
		Use:     "get <project-id>",
		Aliases: []string{"show"},
		Short:   "Show a project.",
		Args:    cobra.ExactArgs(1),
		Example: strings.TrimSpace(`geonosis project get 3f0c6c1e-5d0f-4c52-9a8e-2f4d8c1b7a90`),
		RunE: func(cmd *cobra.Command, args []string) error {
			project, err := runtime.Client().Projects.Get(cmd.Context(), strings.TrimSpace(args[0]))
			if err != nil {
				return requestErr(err)
			}
			return printProject(runtime.Output(), stdout, project)
		},
	}

	createCmd := &cobra.Command{
		Use:     "create",
		Aliases: []string{"new"},
		Short:   "Create a project.",
		Long:    "Create a project from a name and an epic. The epic may be read from a file or stdin.",
		Args:    cobra.NoArgs,
		Example: strings.TrimSpace(`geonosis project create -n "Alpha" -e "Build a todo app"
geonosis project create -n "Alpha" --epic-file epic.md -t EXISTING_PROJECT_FEATURE
cat epic.md | geonosis project create -n "Alpha" --epic-file -`),
		RunE: func(cmd *cobra.Command, _ []string) error {
			name, _ := cmd.Flags().GetString("name")
			projectType, _ := cmd.Flags().GetString("type")

			epic, err := readEpic(cmd)
			if err != nil {
				return wrapErr(http.StatusBadRequest, err.Error())
			}

			input, err := projectform.Create(name, epic, projectType)
			if err != nil {
				return requestErr(err)
			}

			project, err := runtime.Client().Projects.Create(cmd.Context(), input)
			if err != nil {
				return requestErr(err)
			}
			return printProject(runtime.Output(), stdout, project)
		},
	}
	createCmd.Flags().StringP("name", "n", "", "Project name")
	createCmd.Flags().StringP("epic", "e", "", "Epic / requirements in markdown")
	createCmd.Flags().String("epic-file", "", "Read the epic from a file, - for stdin")
	createCmd.Flags().StringP("type", "t", "", "Project type: NEW_PROJECT, EXISTING_PROJECT_BUG, EXISTING_PROJECT_FEATURE")
	createCmd.MarkFlagsMutuallyExclusive("epic", "epic-file")

	updateCmd := &cobra.Command{
		Use:     "update <project-id>",
		Aliases: []string{"edit"},
		Short:   "Update a project.",
		Long:    "Update any of a project's name, epic, and status. Only the given flags are sent.",
		Args:    cobra.ExactArgs(1),
		Example: strings.TrimSpace(`geonosis project update <id> --status APPROVED
geonosis project update <id> --name "Alpha v2" --epic-file epic.md`),
		RunE: func(cmd *cobra.Command, args []string) error {
			var name, epic, status *string
			if cmd.Flags().Changed("name") {
				value, _ := cmd.Flags().GetString("name")
				name = &value
			}
			if cmd.Flags().Changed("epic") || cmd.Flags().Changed("epic-file") {
				value, err := readEpic(cmd)
				if err != nil {
					return wrapErr(http.StatusBadRequest, err.Error())
				}
				epic = &value
			}
			if cmd.Flags().Changed("status") {
				value, _ := cmd.Flags().GetString("status")
				status = &value
			}

			update, err := projectform.Patch(name, epic, status)
			if err != nil {
				return requestErr(err)
			}

			project, err := runtime.Client().Projects.Update(cmd.Context(), strings.TrimSpace(args[0]), update)
			if err != nil {
				return requestErr(err)
			}
			return printProject(runtime.Output(), stdout, project)
		},
	}
	updateCmd.Flags().StringP("name", "n", "", "New project name")
	updateCmd.Flags().StringP("epic", "e", "", "New epic / requirements")
	updateCmd.Flags().String("epic-file", "", "Read the new epic from a file, - for stdin")
	updateCmd.Flags().StringP("status", "s", "", "New project status, e.g. APPROVED")
	updateCmd.MarkFlagsMutuallyExclusive("epic", "epic-file")

	deleteCmd := &cobra.Command{
		Use:     "delete <project-id>",
		Aliases: []string{"rm", "remove"},
		Short:   "Delete a project.",
		Long:    "Delete a project together with its features. This cannot be undone.",
		Args:    cobra.ExactArgs(1),
		Example: strings.TrimSpace(`geonosis project delete <id>
geonosis proj rm <id>`),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := strings.TrimSpace(args[0])
			if err := runtime.Client().Projects.Delete(cmd.Context(), id); err != nil {
				return requestErr(err)
			}
			return printDeleted(runtime.Output(), stdout, id)
		},
	}

	projectCmd.AddCommand(listCmd, getCmd, createCmd, updateCmd, deleteCmd)
	return projectCmd
}

func readEpic(cmd *cobra.Command) (string, error) {
	path, _ := cmd.Flags().GetString("epic-file")
	if strings.TrimSpace(path) == "" {
		epic, _ := cmd.Flags().GetString("epic")
		return epic, nil
	}

	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("read epic: %w", err)
	}
	return string(data), nil
}
