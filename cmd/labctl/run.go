package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newRunCmd(a *app) *cobra.Command {
	var file, outPath string

	cmd := &cobra.Command{
		Use:   "run [subject] [program]",
		Short: "Run a program",
		Long: `Run a program. The code comes from --file when given, else from your
saved copy, else from the catalog. JavaScript output is printed; a rendered
HTML/CSS/JS document is written to --out, or printed when --out is not set.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var edited string
			if file != "" {
				data, err := os.ReadFile(file)
				if err != nil {
					return fmt.Errorf("failed to read %s: %w", file, err)
				}
				edited = string(data)
			}

			view, ok, err := a.hub.Run(cmd.Context(), args[0], args[1], edited)
			if err != nil {
				return err
			}
			if !ok {
				return notFound("program", args...)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, view.Note)
			fmt.Fprintln(out)

			if view.Document == "" {
				fmt.Fprintln(out, view.Output)
				if view.Failed {
					return fmt.Errorf("program %s/%s failed", args[0], args[1])
				}
				return nil
			}

			if outPath == "" {
				fmt.Fprintln(out, view.Document)
				return nil
			}
			if err := os.WriteFile(outPath, []byte(view.Document), 0o644); err != nil {
				return fmt.Errorf("failed to write %s: %w", outPath, err)
			}
			fmt.Fprintf(out, "✅ Rendered document written to %s\n", outPath)
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Run the code in this file instead of the saved copy")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Write a rendered document to this file")
	return cmd
}

func newSaveCmd(a *app) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "save [subject] [program]",
		Short: "Save your copy of a program",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", file, err)
			}

			view, ok, err := a.hub.SaveUserCopy(cmd.Context(), args[0], args[1], string(data))
			if err != nil {
				return err
			}
			if !ok {
				return notFound("program", args...)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "✅ %s (%s/%s, %s store)\n",
				view.Status, view.SubjectID, view.ProgramID, a.store.Backend())
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "File holding the code to save")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}
