package utils

// Labels shown by the command line reports. Keys are stable identifiers;
// dimension, archetype and match level keys reuse their wire names.

var translations = map[string]map[string]string{
	"en": {
		"dimension.empathy_level":        "Empathy & Understanding",
		"dimension.growth_orientation":   "Personal Growth",
		"dimension.relationship_focus":   "Relationships",
		"dimension.openness_change":      "Openness to Change",
		"dimension.help_motivation":      "Helping Others",
		"dimension.fairness_orientation": "Fairness & Justice",
		"dimension.success_definition":   "Success",
		"dimension.resilience_level":     "Resilience",
		"dimension.cultural_curiosity":   "Cultural Curiosity",
		"dimension.authenticity_level":   "Authenticity",

		"match.strong":    "Strong Match",
		"match.moderate":  "Moderate Match",
		"match.different": "Different",

		"archetype.Empathic_Grower":     "Empathic Grower",
		"archetype.Relational_Empath":   "Relational Empath",
		"archetype.Open_Explorer":       "Open Explorer",
		"archetype.Resilient_Authentic": "Resilient & Authentic",
		"archetype.Altruistic_Advocate": "Altruistic Advocate",
		"archetype.Mindful_Grower":      "Mindful Grower",
		"archetype.Balanced_Individual": "Balanced Individual",

		"report.profile":       "Profile",
		"report.archetype":     "Archetype",
		"report.compatibility": "Compatibility",
		"report.shared_values": "Shared values",
		"report.matches":       "Top matches",
		"report.no_matches":    "No matches yet",
		"report.respondents":   "Respondents",
		"report.scored":        "Scored",
		"report.alpha":         "Cronbach's alpha",
	},
	"zh": {
		"dimension.empathy_level":        "同理心与理解",
		"dimension.growth_orientation":   "个人成长",
		"dimension.relationship_focus":   "人际关系",
		"dimension.openness_change":      "对变化的开放度",
		"dimension.help_motivation":      "助人意愿",
		"dimension.fairness_orientation": "公平与正义",
		"dimension.success_definition":   "成功观",
		"dimension.resilience_level":     "韧性",
		"dimension.cultural_curiosity":   "文化好奇心",
		"dimension.authenticity_level":   "真实性",

		"match.strong":    "高度契合",
		"match.moderate":  "一般契合",
		"match.different": "差异较大",

		"archetype.Empathic_Grower":     "共情成长者",
		"archetype.Relational_Empath":   "关系共情者",
		"archetype.Open_Explorer":       "开放探索者",
		"archetype.Resilient_Authentic": "坚韧真实者",
		"archetype.Altruistic_Advocate": "利他倡导者",
		"archetype.Mindful_Grower":      "自省成长者",
		"archetype.Balanced_Individual": "均衡个体",

		"report.profile":       "个人画像",
		"report.archetype":     "类型",
		"report.compatibility": "契合度",
		"report.shared_values": "共同价值",
		"report.matches":       "最佳匹配",
		"report.no_matches":    "暂无匹配",
		"report.respondents":   "受访者",
		"report.scored":        "已评分",
		"report.alpha":         "克朗巴赫系数",
	},
}

// SupportedLocales lists the locales with a translation table.
func SupportedLocales() []string { return []string{"en", "zh"} }

// T returns the translated string for key in locale; falls back to English.
func T(locale, key string) string {
	if m, ok := translations[locale]; ok {
		if v, ok := m[key]; ok {
			return v
		}
	}
	if m, ok := translations["en"]; ok {
		if v, ok := m[key]; ok {
			return v
		}
	}
	return key
}
