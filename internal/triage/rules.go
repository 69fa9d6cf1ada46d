package triage

// Rule is a single symptom-checker entry: what the symptom likely means,
// what to do about it, and how urgent it is.
type Rule struct {
	Message             string  `json:"message"`
	Advice              string  `json:"advice"`
	Urgency             Urgency `json:"urgency"`
	ShouldConsultDoctor bool    `json:"shouldConsultDoctor"`
}

// ruleEntry pairs a canonical symptom key with its rule. Tables are kept as
// ordered slices, not maps: matching is first-match-wins and the iteration
// order is part of the contract.
type ruleEntry struct {
	Key  string
	Rule Rule
}

var englishRules = []ruleEntry{
	{
		Key: "fever",
		Rule: Rule{
			Message:             "You have reported fever. This could be due to various reasons including infection, flu, or other conditions.",
			Advice:              "Please monitor your temperature, stay hydrated, and rest. If fever persists or goes above 101°F, consult a doctor immediately.",
			Urgency:             UrgencyMedium,
			ShouldConsultDoctor: true,
		},
	},
	{
		Key: "cough",
		Rule: Rule{
			Message:             "Cough can be due to cold, flu, allergies, or respiratory infections.",
			Advice:              "Stay hydrated, avoid cold drinks, and consider warm water with honey. If cough persists for more than a week or has blood, see a doctor.",
			Urgency:             UrgencyLow,
			ShouldConsultDoctor: false,
		},
	},
	{
		Key: "headache",
		Rule: Rule{
			Message:             "Headaches can be caused by stress, dehydration, lack of sleep, or underlying conditions.",
			Advice:              "Rest in a quiet, dark room, stay hydrated, and try gentle head massage. If severe or recurring, consult a doctor.",
			Urgency:             UrgencyLow,
			ShouldConsultDoctor: false,
		},
	},
	{
		Key: "chest pain",
		Rule: Rule{
			Message:             "Chest pain can be serious and may indicate heart, lung, or muscle problems.",
			Advice:              "Seek immediate medical attention, especially if accompanied by shortness of breath, sweating, or nausea.",
			Urgency:             UrgencyHigh,
			ShouldConsultDoctor: true,
		},
	},
	{
		Key: "stomach pain",
		Rule: Rule{
			Message:             "Stomach pain can be due to indigestion, gas, food poisoning, or more serious conditions.",
			Advice:              "Avoid solid foods, drink clear fluids, and rest. If severe or persistent, consult a doctor.",
			Urgency:             UrgencyMedium,
			ShouldConsultDoctor: false,
		},
	},
	{
		Key: "cold",
		Rule: Rule{
			Message:             "Common cold is usually caused by viral infections and resolves on its own.",
			Advice:              "Rest, drink warm fluids, use steam inhalation, and maintain good hygiene. Recovery usually takes 7-10 days.",
			Urgency:             UrgencyLow,
			ShouldConsultDoctor: false,
		},
	},
	{
		Key: "high blood pressure",
		Rule: Rule{
			Message:             "High blood pressure requires regular monitoring and medical management.",
			Advice:              "Reduce salt intake, exercise regularly, avoid stress, and take prescribed medications. Monitor regularly.",
			Urgency:             UrgencyMedium,
			ShouldConsultDoctor: true,
		},
	},
}

var punjabiRules = []ruleEntry{
	{
		Key: "fever",
		Rule: Rule{
			Message:             "ਤੁਹਾਨੂੰ ਬੁਖਾਰ ਹੈ। ਇਹ ਕਈ ਕਾਰਨਾਂ ਕਰਕੇ ਹੋ ਸਕਦਾ ਹੈ ਜਿਵੇਂ ਇਨਫੈਕਸ਼ਨ, ਫਲੂ, ਜਾਂ ਹੋਰ ਬਿਮਾਰੀਆਂ।",
			Advice:              "ਆਪਣਾ ਤਾਪਮਾਨ ਚੈੱਕ ਕਰਦੇ ਰਹੋ, ਪਾਣੀ ਪੀਂਦੇ ਰਹੋ, ਅਤੇ ਆਰਾਮ ਕਰੋ। ਜੇ ਬੁਖਾਰ 101°F ਤੋਂ ਵੱਧ ਹੋਵੇ ਤਾਂ ਤੁਰੰਤ ਡਾਕਟਰ ਨੂੰ ਮਿਲੋ।",
			Urgency:             UrgencyMedium,
			ShouldConsultDoctor: true,
		},
	},
	{
		Key: "cough",
		Rule: Rule{
			Message:             "ਖੰਘ ਸਰਦੀ, ਫਲੂ, ਐਲਰਜੀ, ਜਾਂ ਸਾਹ ਦੀ ਇਨਫੈਕਸ਼ਨ ਕਾਰਨ ਹੋ ਸਕਦੀ ਹੈ।",
			Advice:              "ਪਾਣੀ ਪੀਂਦੇ ਰਹੋ, ਠੰਡੇ ਪੇਅ ਤੋਂ ਬਚੋ, ਸ਼ਹਿਦ ਵਾਲਾ ਗਰਮ ਪਾਣੀ ਪੀਓ। ਜੇ ਇੱਕ ਹਫ਼ਤੇ ਬਾਅਦ ਵੀ ਖੰਘ ਹੈ ਤਾਂ ਡਾਕਟਰ ਨੂੰ ਮਿਲੋ।",
			Urgency:             UrgencyLow,
			ShouldConsultDoctor: false,
		},
	},
	{
		Key: "headache",
		Rule: Rule{
			Message:             "ਸਿਰ ਦਰਦ ਤਣਾਅ, ਪਾਣੀ ਦੀ ਕਮੀ, ਨੀਂਦ ਦੀ ਕਮੀ, ਜਾਂ ਹੋਰ ਕਾਰਨਾਂ ਤੋਂ ਹੋ ਸਕਦਾ ਹੈ।",
			Advice:              "ਸ਼ਾਂਤ ਥਾਂ ਤੇ ਆਰਾਮ ਕਰੋ, ਪਾਣੀ ਪੀਓ, ਸਿਰ ਦੀ ਹਲਕੀ ਮਾਲਿਸ਼ ਕਰੋ। ਜੇ ਬਹੁਤ ਤੇਜ਼ ਹੈ ਤਾਂ ਡਾਕਟਰ ਨੂੰ ਮਿਲੋ।",
			Urgency:             UrgencyLow,
			ShouldConsultDoctor: false,
		},
	},
	{
		Key: "chest pain",
		Rule: Rule{
			Message:             "ਛਾਤੀ ਵਿੱਚ ਦਰਦ ਗੰਭੀਰ ਹੋ ਸਕਦਾ ਹੈ ਅਤੇ ਦਿਲ, ਫੇਫੜੇ, ਜਾਂ ਮਾਸਪੇਸ਼ੀਆਂ ਦੀ ਸਮੱਸਿਆ ਹੋ ਸਕਦੀ ਹੈ।",
			Advice:              "ਤੁਰੰਤ ਮੈਡੀਕਲ ਸਹਾਇਤਾ ਲਓ, ਖਾਸ ਕਰਕੇ ਜੇ ਸਾਹ ਲੈਣ ਵਿੱਚ ਮੁਸ਼ਕਲ, ਪਸੀਨਾ, ਜਾਂ ਉਲਟੀ ਆਵੇ।",
			Urgency:             UrgencyHigh,
			ShouldConsultDoctor: true,
		},
	},
	{
		Key: "stomach pain",
		Rule: Rule{
			Message:             "ਪੇਟ ਦਰਦ ਬਦਹਜ਼ਮੀ, ਗੈਸ, ਫੂਡ ਪਾਇਜ਼ਨਿੰਗ, ਜਾਂ ਹੋਰ ਗੰਭੀਰ ਕਾਰਨਾਂ ਤੋਂ ਹੋ ਸਕਦਾ ਹੈ।",
			Advice:              "ਠੋਸ ਭੋਜਨ ਨਾ ਖਾਓ, ਤਰਲ ਪਦਾਰਥ ਪੀਓ, ਅਤੇ ਆਰਾਮ ਕਰੋ। ਜੇ ਬਹੁਤ ਤੇਜ਼ ਹੈ ਤਾਂ ਡਾਕਟਰ ਨੂੰ ਮਿਲੋ।",
			Urgency:             UrgencyMedium,
			ShouldConsultDoctor: false,
		},
	},
}

// fallbackRule returns the generic response used when no table entry matches.
func fallbackRule(lang Language) Rule {
	if lang == LanguagePunjabi {
		return Rule{
			Message:             "ਤੁਹਾਡੇ ਦੱਸੇ ਲੱਛਣਾਂ ਬਾਰੇ ਜਾਣਕਾਰੀ ਉਪਲਬਧ ਨਹੀਂ ਹੈ।",
			Advice:              "ਆਪਣੇ ਲੱਛਣਾਂ ਬਾਰੇ ਵਿਸਤਾਰ ਵਿੱਚ ਡਾਕਟਰ ਨਾਲ ਗੱਲ ਕਰੋ।",
			Urgency:             UrgencyMedium,
			ShouldConsultDoctor: true,
		}
	}
	return Rule{
		Message:             "Information about this symptom is not available in our database.",
		Advice:              "Please consult with a doctor for detailed evaluation of your symptoms.",
		Urgency:             UrgencyMedium,
		ShouldConsultDoctor: true,
	}
}

func rulesFor(lang Language) []ruleEntry {
	if lang == LanguagePunjabi {
		return punjabiRules
	}
	return englishRules
}

// Localized recommendation and disclaimer strings.
var (
	recommendationUrgent = map[Language]string{
		LanguageEnglish: "Seek immediate medical attention. This could be a serious condition.",
		LanguagePunjabi: "ਤੁਰੰਤ ਮੈਡੀਕਲ ਸਹਾਇਤਾ ਲਓ। ਸਥਿਤੀ ਗੰਭੀਰ ਹੋ ਸਕਦੀ ਹੈ।",
	}
	recommendationConsult = map[Language]string{
		LanguageEnglish: "Consult with a doctor soon. Consider booking an appointment.",
		LanguagePunjabi: "ਜਲਦੀ ਡਾਕਟਰ ਨਾਲ ਸਲਾਹ ਕਰੋ। ਅਪਾਇੰਟਮੈਂਟ ਬੁੱਕ ਕਰੋ।",
	}
	recommendationGeneral = map[Language]string{
		LanguageEnglish: "Get plenty of rest and stay hydrated.",
		LanguagePunjabi: "ਭਰਪੂਰ ਆਰਾਮ ਕਰੋ ਅਤੇ ਪਾਣੀ ਪੀਂਦੇ ਰਹੋ।",
	}
	disclaimers = map[Language]string{
		LanguageEnglish: "This is for informational purposes only. Consult a doctor for professional medical advice.",
		LanguagePunjabi: "ਇਹ ਸਿਰਫ਼ ਜਾਣਕਾਰੀ ਦੇ ਲਈ ਹੈ। ਮੈਡੀਕਲ ਸਲਾਹ ਦੇ ਲਈ ਡਾਕਟਰ ਨੂੰ ਮਿਲੋ।",
	}
)

// CommonSymptoms lists suggested symptom phrases shown by clients.
func CommonSymptoms(lang Language) []string {
	if lang == LanguagePunjabi {
		return []string{
			"ਬੁਖਾਰ", "ਖੰਘ", "ਸਿਰ ਦਰਦ", "ਛਾਤੀ ਦਰਦ", "ਪੇਟ ਦਰਦ",
			"ਸਰਦੀ", "ਗਲੇ ਦਰਦ", "ਸਰੀਰ ਦਰਦ", "ਉਲਟੀ", "ਚੱਕਰ ਆਉਣਾ",
			"ਹਾਈ ਬਲੱਡ ਪ੍ਰੈਸ਼ਰ", "ਸ਼ੂਗਰ ਦੇ ਲੱਛਣ", "ਸਾਹ ਲੈਣ ਵਿੱਚ ਮੁਸ਼ਕਲ",
		}
	}
	return []string{
		"fever", "cough", "headache", "chest pain", "stomach pain",
		"cold", "sore throat", "body ache", "nausea", "dizziness",
		"high blood pressure", "diabetes symptoms", "breathing difficulty",
	}
}
