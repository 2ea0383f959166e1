package catalog

import "github.com/herbwise/fangmatch/internal/domain/formula"

// SeedFormulas returns the built-in classical formulas.  They keep the
// service usable with no database configured and double as fixtures in
// tests.  Dosages follow common modern decoctions in grams.
func SeedFormulas() []*formula.StandardFormula {
	return []*formula.StandardFormula{
		{
			ID:          "seed-mahuang-tang",
			Name:        "麻黄汤",
			Source:      "伤寒论",
			Composition: []string{"麻黄", "桂枝", "杏仁", "甘草"},
			StandardDosage: map[string]float64{
				"麻黄": 9, "桂枝": 6, "杏仁": 9, "甘草": 3,
			},
			Usage:       "水煎服，温覆取微汗。",
			Effect:      "发汗解表，宣肺平喘。",
			Indications: "外感风寒表实证。恶寒发热，头身疼痛，无汗而喘。",
		},
		{
			ID:          "seed-guizhi-tang",
			Name:        "桂枝汤",
			Source:      "伤寒论",
			Composition: []string{"桂枝", "白芍", "生姜", "大枣", "甘草"},
			StandardDosage: map[string]float64{
				"桂枝": 9, "白芍": 9, "生姜": 9, "大枣": 12, "甘草": 6,
			},
			Usage:       "水煎服，服后啜热稀粥以助药力。",
			Effect:      "解肌发表，调和营卫。",
			Indications: "外感风寒表虚证。头痛发热，汗出恶风。",
		},
		{
			ID:          "seed-baihu-tang",
			Name:        "白虎汤",
			Source:      "伤寒论",
			Composition: []string{"石膏", "知母", "甘草", "粳米"},
			StandardDosage: map[string]float64{
				"石膏": 50, "知母": 18, "甘草": 6, "粳米": 9,
			},
			Usage:       "水煎至米熟汤成，温服。",
			Effect:      "清热生津。",
			Indications: "气分热盛证。壮热面赤，烦渴引饮，大汗出。",
		},
		{
			ID:          "seed-maxing-ganshi-tang",
			Name:        "麻杏甘石汤",
			Source:      "伤寒论",
			Composition: []string{"麻黄", "杏仁", "甘草", "石膏"},
			StandardDosage: map[string]float64{
				"麻黄": 9, "杏仁": 9, "甘草": 6, "石膏": 24,
			},
			Usage:       "水煎服。",
			Effect:      "辛凉疏表，清肺平喘。",
			Indications: "外感风邪，邪热壅肺证。身热不解，咳逆气急。",
		},
		{
			ID:          "seed-xiaoqinglong-tang",
			Name:        "小青龙汤",
			Source:      "伤寒论",
			Composition: []string{"麻黄", "白芍", "细辛", "干姜", "甘草", "桂枝", "五味子", "半夏"},
			StandardDosage: map[string]float64{
				"麻黄": 9, "白芍": 9, "细辛": 6, "干姜": 6,
				"甘草": 6, "桂枝": 9, "五味子": 6, "半夏": 9,
			},
			Usage:       "水煎服。",
			Effect:      "解表散寒，温肺化饮。",
			Indications: "外寒里饮证。恶寒发热，无汗，咳喘痰多而稀。",
		},
		{
			ID:          "seed-yinqiao-san",
			Name:        "银翘散",
			Source:      "温病条辨",
			Composition: []string{"金银花", "连翘", "桔梗", "薄荷", "竹叶", "甘草", "荆芥穗", "淡豆豉", "牛蒡子", "芦根"},
			StandardDosage: map[string]float64{
				"金银花": 15, "连翘": 15, "桔梗": 6, "薄荷": 6, "竹叶": 4,
				"甘草": 5, "荆芥穗": 4, "淡豆豉": 5, "牛蒡子": 6, "芦根": 15,
			},
			Usage:       "杵为散，每服六钱，鲜苇根汤煎。",
			Effect:      "辛凉透表，清热解毒。",
			Indications: "温病初起。发热微恶风寒，咽痛口渴。",
		},
		{
			ID:          "seed-sijunzi-tang",
			Name:        "四君子汤",
			Source:      "太平惠民和剂局方",
			Composition: []string{"人参", "白术", "茯苓", "甘草"},
			StandardDosage: map[string]float64{
				"人参": 9, "白术": 9, "茯苓": 9, "甘草": 6,
			},
			Usage:       "水煎服。",
			Effect:      "益气健脾。",
			Indications: "脾胃气虚证。面色萎白，语声低微，气短乏力。",
		},
		{
			ID:          "seed-xiaochaihu-tang",
			Name:        "小柴胡汤",
			Source:      "伤寒论",
			Composition: []string{"柴胡", "黄芩", "人参", "半夏", "甘草", "生姜", "大枣"},
			StandardDosage: map[string]float64{
				"柴胡": 24, "黄芩": 9, "人参": 9, "半夏": 9,
				"甘草": 9, "生姜": 9, "大枣": 12,
			},
			Usage:       "水煎服。",
			Effect:      "和解少阳。",
			Indications: "伤寒少阳证。往来寒热，胸胁苦满，默默不欲饮食。",
		},
	}
}
