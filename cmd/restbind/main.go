package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/restbind-dev/restbind/internal/cli"
)

func main() {
	root := &cobra.Command{
		Use:   "restbind",
		Short: "Compile OpenAPI specs into typed request bindings",
	}

	root.AddCommand(newCompileCmd())
	root.AddCommand(newDescribeCmd())
	root.AddCommand(newValidateCmd())

	if err := root.Execute(); err != nil {
		log.Println(err)
		os.Exit(1)
	}
}

func addCompileFlags(cmd *cobra.Command, p *cli.Params) {
	cmd.Flags().StringVarP(&p.ConfigPath, "config", "c", "", "Path to restbind.yaml config")
	cmd.Flags().StringVar(&p.Spec, "input", "", "OpenAPI spec file or URL (yaml/json)")
	cmd.Flags().StringArrayVar(&p.IncludeTags, "include-tags", nil, "Regex patterns for tags to include")
	cmd.Flags().StringArrayVar(&p.ExcludeTags, "exclude-tags", nil, "Regex patterns for tags to exclude")
}

func newCompileCmd() *cobra.Command {
	var p cli.Params
	cmd := &cobra.Command{
		Use:   "compile",
		Short: "Compile a spec and print the binding surface",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.RunCompile(p, cmd.OutOrStdout())
		},
	}
	addCompileFlags(cmd, &p)
	return cmd
}

func newDescribeCmd() *cobra.Command {
	var p cli.Params
	var out string
	cmd := &cobra.Command{
		Use:   "describe",
		Short: "Render the compiled surface as Markdown",
		RunE: func(cmd *cobra.Command, args []string) error {
			if out == "" {
				return cli.RunDescribe(p, cmd.OutOrStdout())
			}
			f, err := os.Create(out)
			if err != nil {
				return err
			}
			defer f.Close()
			return cli.RunDescribe(p, f)
		},
	}
	addCompileFlags(cmd, &p)
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file (defaults to stdout)")
	return cmd
}

func newValidateCmd() *cobra.Command {
	var input string
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate an OpenAPI spec",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.RunValidate(input)
		},
	}
	cmd.Flags().StringVar(&input, "input", "", "OpenAPI spec file or URL (yaml/json)")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}
