package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/herbwise/fangmatch/internal/application/matching"
	"github.com/herbwise/fangmatch/internal/domain/formula"
)

func newMatchCommand(env *cliEnv) *cobra.Command {
	return &cobra.Command{
		Use:   "match [herb list]",
		Short: "Match a herb list against the formula catalog",
		Example: `  fangmatch match "麻黄9g 桂枝6g 杏仁9g 甘草3g"
  echo "石膏30 知母9 甘草3 粳米9" | fangmatch match`,
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readInput(cmd, args)
			if err != nil {
				return err
			}

			out, err := env.matching.MatchText(cmd.Context(), text)
			if err != nil {
				return err
			}
			if env.opts.format == formatJSON {
				return env.printJSON(out)
			}
			printMatchOutput(env, out)
			return nil
		},
	}
}

func printMatchOutput(env *cliEnv, out *matching.MatchOutput) {
	if len(out.Input) == 0 {
		fmt.Fprintln(env.stdout, "未识别出任何药材。")
		return
	}
	fmt.Fprintf(env.stdout, "识别药材 %d 味：", len(out.Input))
	for i, e := range out.Input {
		if i > 0 {
			fmt.Fprint(env.stdout, "、")
		}
		fmt.Fprint(env.stdout, e.Name)
		if e.HasDosage() {
			fmt.Fprintf(env.stdout, "%g%s", e.Dosage, e.Unit)
		}
	}
	fmt.Fprintln(env.stdout)

	if len(out.Results) == 0 {
		fmt.Fprintln(env.stdout, "未匹配到任何方剂。")
		return
	}

	for i, r := range out.Results {
		fmt.Fprintf(env.stdout, "%d. %s（%s）  %.1f%%  %s\n",
			i+1, r.Formula.Name, r.Formula.Source, r.Score*100, matchTypeLabel(r.MatchType))
		if len(r.MissingHerbs) > 0 {
			fmt.Fprintf(env.stdout, "   缺少：%s\n", joinNames(r.MissingHerbs))
		}
		if len(r.AdditionalHerbs) > 0 {
			names := make([]string, len(r.AdditionalHerbs))
			for j, e := range r.AdditionalHerbs {
				names[j] = e.Name
			}
			fmt.Fprintf(env.stdout, "   多出：%s\n", joinNames(names))
		}
		if r.IsCombined && r.CombinedWith != "" {
			fmt.Fprintf(env.stdout, "   可能为合方：%s 合 %s\n", r.Formula.Name, r.CombinedWith)
		}
		if r.DosageAnalysis != nil && r.DosageAnalysis.Details != "" {
			fmt.Fprintf(env.stdout, "   剂量：%s\n", r.DosageAnalysis.Details)
		}
	}
	if out.Analysis != "" {
		fmt.Fprintf(env.stdout, "方解：%s\n", out.Analysis)
	}
}

func matchTypeLabel(t formula.MatchType) string {
	switch t {
	case formula.MatchExact:
		return "完全匹配"
	case formula.MatchVariant:
		return "加减方"
	case formula.MatchSubset:
		return "缺味"
	case formula.MatchRatioMismatch:
		return "比例不符"
	default:
		return t.String()
	}
}

func joinNames(names []string) string {
	out := ""
	for i, n := range names {
		if i > 0 {
			out += "、"
		}
		out += n
	}
	return out
}
