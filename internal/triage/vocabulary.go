package triage

// firstAidVocabulary is the domain keyword set the keyword classifier and the
// relatedness check score against. Multi-word entries are matched as
// substrings of the full lowered text; single words match token-wise with
// typo tolerance.
var firstAidVocabulary = []string{
	"bleed", "bleeding", "blood", "cut", "laceration", "wound", "gash",
	"burn", "burned", "scald", "blister", "blisters",
	"choke", "choking", "airway", "heimlich",
	"allergy", "allergic", "anaphylaxis", "hives", "swelling", "swollen",
	"bruise", "bruised", "contusion",
	"sprain", "sprained", "strain", "twisted",
	"fracture", "fractured", "broken bone",
	"faint", "fainted", "fainting", "dizzy", "dizziness", "lightheaded",
	"unconscious", "passed out",
	"headache", "migraine", "concussion",
	"poison", "poisoning", "overdose", "toxic",
	"pain", "painful", "hurt", "hurts", "hurting", "ache", "aching", "sore",
	"injury", "injured", "injuries",
	"bandage", "bandaged", "dressing", "splint", "tourniquet",
	"cpr", "first aid", "emergency",
	"sting", "stung", "bite", "bitten",
	"rash", "itchy", "itching",
	"fever", "vomiting", "nausea", "nosebleed",
	"seizure", "shock", "stroke",
	"chest pain", "cant breathe", "can't breathe", "short of breath",
	"ambulance", "paramedic",
}

// offTopicKeywords is the fixed deny set the scope gate checks after the
// configurable deny-topic list. Whole-word matches only.
var offTopicKeywords = []string{
	"crypto", "bitcoin", "stock", "stocks", "invest", "investment",
	"homework", "assignment",
	"movie", "film",
	"recipe", "cook", "cooking",
	"code", "coding", "program", "programming",
	"travel", "vacation",
	"sports", "basketball", "football",
}

// bodyParts are the location keywords the trend analyzer looks for when
// deciding whether the user has said where the problem is.
var bodyParts = []string{
	"arm", "forearm", "elbow", "wrist", "hand", "finger", "thumb",
	"leg", "thigh", "knee", "shin", "ankle", "foot", "toe",
	"head", "forehead", "scalp", "face", "eye", "ear", "nose", "mouth", "lip",
	"neck", "throat", "shoulder", "chest", "back", "stomach", "abdomen",
	"hip", "rib", "skin",
}
