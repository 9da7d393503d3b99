package explain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnsupportedLanguage is returned by ValidateLanguage for codes outside
// the supported set.
var ErrUnsupportedLanguage = errors.New("unsupported language code")

var supportedLanguages = map[string]struct{}{}

func init() {
	indian := []string{"hi", "ta", "te", "bn", "gu", "kn", "ml", "mr", "pa", "or", "as", "sa", "ur", "ne", "si"}
	international := []string{
		"en", "es", "fr", "de", "it", "pt", "ru", "zh", "ja", "ar", "ko", "tr", "nl", "sv", "no",
		"da", "fi", "pl", "cs", "hu", "ro", "bg", "hr", "sk", "sl", "et", "lv", "lt", "he", "th",
		"vi", "id", "ms", "tl", "my", "km", "lo", "ka", "am", "sw", "zu", "af", "is", "mt", "cy",
	}
	for _, code := range append(indian, international...) {
		supportedLanguages[code] = struct{}{}
	}
}

// ValidateLanguage normalizes code to lower case and checks it against the
// supported ISO 639-1 set.
func ValidateLanguage(code string) (string, error) {
	norm := strings.ToLower(strings.TrimSpace(code))
	if _, ok := supportedLanguages[norm]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedLanguage, code)
	}
	return norm, nil
}

// SupportedLanguageCount reports how many language codes are accepted.
func SupportedLanguageCount() int { return len(supportedLanguages) }

var languageNames = map[string]string{
	"hi": "Hindi",
	"ta": "Tamil",
	"te": "Telugu",
	"bn": "Bengali",
	"gu": "Gujarati",
	"kn": "Kannada",
	"ml": "Malayalam",
	"mr": "Marathi",
	"pa": "Punjabi",
	"or": "Odia",
	"as": "Assamese",
	"sa": "Sanskrit",
	"en": "English",
	"es": "Spanish",
	"fr": "French",
	"de": "German",
	"zh": "Chinese",
	"ja": "Japanese",
	"ar": "Arabic",
}

// LanguageName returns the English name of a language, or the code itself
// when it has no entry.
func LanguageName(code string) string {
	if name, ok := languageNames[code]; ok {
		return name
	}
	return code
}

var nativeLanguageNames = map[string]string{
	"hi": "Hindi (हिन्दी)", "ta": "Tamil (தமிழ்)", "te": "Telugu (తెలుగు)",
	"bn": "Bengali (বাংলা)", "gu": "Gujarati (ગુજરાતી)", "kn": "Kannada (ಕನ್ನಡ)",
	"ml": "Malayalam (മലയാളം)", "mr": "Marathi (मराठी)", "pa": "Punjabi (ਪੰਜਾਬੀ)",
	"or": "Odia (ଓଡ଼ିଆ)", "as": "Assamese (অসমীয়া)", "sa": "Sanskrit (संस्कृत)",
	"ur": "Urdu (اردو)", "ne": "Nepali (नेपाली)", "si": "Sinhala (සිංහල)",
	"en": "English", "es": "Spanish (Español)", "fr": "French (Français)",
	"de": "German (Deutsch)", "zh": "Chinese (中文)", "ja": "Japanese (日本語)",
	"ar": "Arabic (العربية)", "ru": "Russian (Русский)", "pt": "Portuguese (Português)",
	"it": "Italian (Italiano)", "nl": "Dutch (Nederlands)", "tr": "Turkish (Türkçe)",
	"ko": "Korean (한국어)", "th": "Thai (ไทย)", "vi": "Vietnamese (Tiếng Việt)",
	"my": "Myanmar (မြန်မာ)", "km": "Khmer (ខ្មែរ)", "lo": "Lao (ລາວ)",
}

// nativeLanguageName is used for the longer analysis prompt, where naming the
// language in its own script keeps the model from drifting into English.
func nativeLanguageName(code string) string {
	if name, ok := nativeLanguageNames[code]; ok {
		return name
	}
	return strings.ToUpper(code) + " language"
}

var traditionalSystemNames = map[string]map[string]string{
	"Ayurveda": {
		"hi": "आयुर्वेद", "sa": "आयुर्वेद", "bn": "আয়ুর্বেদ",
		"te": "ఆయుర్వేదం", "ta": "ஆயுர்வேதம்", "kn": "ಆಯುರ್ವೇದ",
		"ml": "ആയുര്‍വേദം", "mr": "आयुर्वेद", "gu": "આયુર્વેદ",
		"or": "ଆୟୁର୍ବେଦ", "pa": "ਆਯੁਰਵੇਦ", "ne": "आयुर्वेद",
		"default": "Ayurveda",
	},
	"Siddha": {
		"ta": "சித்த மருத்துவம்", "te": "సిద్ధ వైద్య", "ml": "സിദ്ധ വൈദ്യം",
		"hi": "सिद्ध चिकित्सा", "kn": "ಸಿದ್ಧ ವೈದ್ಯ", "bn": "সিদ্ধ চিকিৎসা",
		"default": "Siddha Medicine",
	},
	"Unani": {
		"ur": "یونانی طب", "ar": "الطب اليوناني", "hi": "यूनानी चिकित्सा",
		"bn": "ইউনানি চিকিৎসা", "te": "యునాని వైద్యం", "ta": "யூனானி மருத்துவம்",
		"default": "Unani Medicine",
	},
}

// traditionalSystemName names a traditional medicine system in the given language.
func traditionalSystemName(system, lang string) string {
	names, ok := traditionalSystemNames[system]
	if !ok {
		return system
	}
	if name, ok := names[lang]; ok {
		return name
	}
	return names["default"]
}
