package herb

import "strings"

// BookUnknown is the sentinel source label for formulas whose origin the
// user left empty.
const BookUnknown = "未知"

// herbAliases maps informal or regional herb names to their canonical form.
// Canonical names never appear as keys, which keeps ResolveHerbAlias
// idempotent.
var herbAliases = map[string]string{
	"云苓":  "茯苓",
	"白茯苓": "茯苓",
	"生军":  "大黄",
	"川军":  "大黄",
	"双花":  "金银花",
	"二花":  "金银花",
	"银花":  "金银花",
	"山萸肉": "山茱萸",
	"枣皮":  "山茱萸",
	"元参":  "玄参",
	"寸冬":  "麦冬",
	"麦门冬": "麦冬",
	"天门冬": "天冬",
	"生草":  "甘草",
	"国老":  "甘草",
	"粉草":  "甘草",
	"杭芍":  "白芍",
	"杭白芍": "白芍",
	"淮山":  "山药",
	"怀山药": "山药",
	"粉葛":  "葛根",
	"苡仁":  "薏苡仁",
	"米仁":  "薏苡仁",
	"生苡仁": "薏苡仁",
	"公英":  "蒲公英",
	"仙灵脾": "淫羊藿",
	"首乌":  "何首乌",
	"枣仁":  "酸枣仁",
	"萸肉":  "山茱萸",
	"丹皮":  "牡丹皮",
	"连乔":  "连翘",
}

// bookAliases maps abbreviated or informal book names to canonical titles.
var bookAliases = map[string]string{
	"伤寒":   "伤寒论",
	"金匮":   "金匮要略",
	"温病":   "温病条辨",
	"局方":   "太平惠民和剂局方",
	"内经":   "黄帝内经",
	"本经":   "神农本草经",
	"景岳":   "景岳全书",
	"脾胃论方": "脾胃论",
}

// ResolveHerbAlias maps an informal herb name to its canonical form.  It is
// a total function: names without an alias entry come back unchanged, so
// resolving twice equals resolving once.
func ResolveHerbAlias(raw string) string {
	name := strings.TrimSpace(raw)
	if canonical, ok := herbAliases[name]; ok {
		return canonical
	}
	return name
}

// ResolveBookAlias maps an informal book-source label to its canonical short
// title.  Guillemets are stripped, surrounding whitespace trimmed, and an
// empty result yields BookUnknown.  Total, never errors.
func ResolveBookAlias(raw string) string {
	src := strings.NewReplacer("《", "", "》", "").Replace(raw)
	src = strings.TrimSpace(src)
	if src == "" {
		return BookUnknown
	}
	if canonical, ok := bookAliases[src]; ok {
		return canonical
	}
	return src
}
