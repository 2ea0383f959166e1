package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newParseCommand(env *cliEnv) *cobra.Command {
	return &cobra.Command{
		Use:   "parse [herb list]",
		Short: "Parse a herb list without matching",
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readInput(cmd, args)
			if err != nil {
				return err
			}

			parsed := env.matching.ParseText(text)
			if env.opts.format == formatJSON {
				return env.printJSON(parsed)
			}

			if len(parsed.Entries) == 0 {
				fmt.Fprintln(env.stdout, "未识别出任何药材。")
				return nil
			}
			for _, e := range parsed.Entries {
				if e.HasDosage() {
					fmt.Fprintf(env.stdout, "%s\t%g%s\n", e.Name, e.Dosage, e.Unit)
				} else {
					fmt.Fprintf(env.stdout, "%s\t-\n", e.Name)
				}
			}
			if parsed.Dropped > 0 {
				fmt.Fprintf(env.stdout, "（忽略 %d 个无法识别的词）\n", parsed.Dropped)
			}
			return nil
		},
	}
}
