package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/isdmx/labhub/hub"
)

func notFound(kind string, ids ...string) error {
	return fmt.Errorf("%s not found: %s", kind, strings.Join(ids, "/"))
}

func newSubjectsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "subjects",
		Short: "List all subjects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tSubject\tPrograms\tAbout")
			fmt.Fprintln(w, "--\t-------\t--------\t-----")
			for _, s := range a.hub.Subjects() {
				fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", s.ID, s.Name, s.ProgramCount, s.Short)
			}
			return w.Flush()
		},
	}
}

func newProgramsCmd(a *app) *cobra.Command {
	var tag, language string

	cmd := &cobra.Command{
		Use:   "programs [subject]",
		Short: "List the programs of a subject",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cards, ok := a.hub.Programs(args[0], tag, language)
			if !ok {
				return notFound("subject", args[0])
			}
			if len(cards) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No programs match the selected filters.")
				return nil
			}
			return writePrograms(cmd, cards, false)
		},
	}

	cmd.Flags().StringVarP(&tag, "tag", "t", "", "Only programs with this tag")
	cmd.Flags().StringVarP(&language, "language", "l", "", "Only programs with this language label")
	return cmd
}

func writePrograms(cmd *cobra.Command, cards []hub.ProgramCard, withSubject bool) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	if withSubject {
		fmt.Fprintln(w, "Subject\tID\tTitle\tLanguage\tTags")
		fmt.Fprintln(w, "-------\t--\t-----\t--------\t----")
	} else {
		fmt.Fprintln(w, "ID\tTitle\tLanguage\tTags")
		fmt.Fprintln(w, "--\t-----\t--------\t----")
	}

	for _, p := range cards {
		tags := strings.Join(p.Tags, ", ")
		if withSubject {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", p.SubjectName, p.ID, p.Title, p.Language, tags)
			continue
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", p.ID, p.Title, p.Language, tags)
	}
	return w.Flush()
}

func newShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show [subject] [program]",
		Short: "Show a program and your copy of its code",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			detail, ok, err := a.hub.OpenProgram(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			if !ok {
				return notFound("program", args...)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, detail.Title)
			fmt.Fprintln(out, detail.Meta)
			if len(detail.Tags) > 0 {
				fmt.Fprintln(out, "Tags: "+strings.Join(detail.Tags, ", "))
			}
			if detail.Problem != "" {
				fmt.Fprintln(out)
				fmt.Fprintln(out, detail.Problem)
			}
			fmt.Fprintln(out)
			if detail.HasUserCopy {
				fmt.Fprintln(out, "Your copy:")
			} else {
				fmt.Fprintln(out, "Code:")
			}
			fmt.Fprintln(out, detail.UserCode)
			fmt.Fprintln(out)
			fmt.Fprintln(out, detail.Note)
			return nil
		},
	}
}

func newSearchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "search [query]",
		Short: "Search programs across all subjects",
		RunE: func(cmd *cobra.Command, args []string) error {
			view := a.hub.Search(strings.Join(args, " "))
			fmt.Fprintln(cmd.OutOrStdout(), view.Summary)
			if len(view.Programs) == 0 {
				return nil
			}
			return writePrograms(cmd, view.Programs, true)
		},
	}
}

func newNotesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "notes",
		Short: "List reference notes and links",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "Title\tType\tLink\tDescription")
			fmt.Fprintln(w, "-----\t----\t----\t-----------")
			for _, n := range a.hub.Notes() {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", n.Title, n.Type, n.URL, n.Description)
			}
			return w.Flush()
		},
	}
}
