package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newFormulaCommand(env *cliEnv) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "formula",
		Short: "Inspect the formula catalog",
	}
	cmd.AddCommand(newFormulaListCommand(env), newFormulaGetCommand(env))
	return cmd
}

func newFormulaListCommand(env *cliEnv) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all formulas in the catalog",
		RunE: func(cmd *cobra.Command, _ []string) error {
			list := env.catalog.List(cmd.Context())
			if env.opts.format == formatJSON {
				return env.printJSON(list)
			}
			for _, f := range list {
				fmt.Fprintf(env.stdout, "%s\t%s\t%d味\n", f.Name, f.Source, len(f.Composition))
			}
			return nil
		},
	}
}

func newFormulaGetCommand(env *cliEnv) *cobra.Command {
	return &cobra.Command{
		Use:   "get <name>",
		Short: "Show one formula by name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := env.catalog.GetByName(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if env.opts.format == formatJSON {
				return env.printJSON(f)
			}

			fmt.Fprintf(env.stdout, "%s（%s）\n", f.Name, f.Source)
			fmt.Fprint(env.stdout, "组成：")
			for i, name := range f.Composition {
				if i > 0 {
					fmt.Fprint(env.stdout, "、")
				}
				fmt.Fprint(env.stdout, name)
				if amount, ok := f.StandardDosage[name]; ok {
					fmt.Fprintf(env.stdout, "%g", amount)
				}
			}
			fmt.Fprintln(env.stdout)
			if f.Effect != "" {
				fmt.Fprintf(env.stdout, "功用：%s\n", f.Effect)
			}
			if f.Indications != "" {
				fmt.Fprintf(env.stdout, "主治：%s\n", f.Indications)
			}
			if f.Usage != "" {
				fmt.Fprintf(env.stdout, "用法：%s\n", f.Usage)
			}
			return nil
		},
	}
}
