package notify

import "strings"

// Locale selects the message table.
type Locale string

const (
	// LocaleBilingual pairs an Arabic title with an English description.
	LocaleBilingual Locale = "bilingual"
	LocaleEnglish   Locale = "en"
)

// Message is the rendered text of one event.
type Message struct {
	Title  string
	Detail string
}

// Text joins title and detail on one line.
func (m Message) Text() string {
	switch {
	case m.Detail == "":
		return m.Title
	case m.Title == "":
		return m.Detail
	default:
		return m.Title + " · " + m.Detail
	}
}

// Messages maps kinds to text for one locale.
type Messages map[Kind]Message

// ParseLocale maps a config value to a Locale, defaulting to bilingual.
func ParseLocale(raw string) Locale {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "en", "english":
		return LocaleEnglish
	default:
		return LocaleBilingual
	}
}

// For returns the message for event, appending the subject to the detail.
func (m Messages) For(event Event) Message {
	msg, ok := m[event.Kind]
	if !ok {
		msg = Message{Title: string(event.Kind)}
	}
	if event.Subject != "" {
		msg.Detail = strings.TrimSpace(msg.Detail + " " + event.Subject)
	}
	return msg
}

// MessagesFor returns the table for locale.
func MessagesFor(locale Locale) Messages {
	if locale == LocaleEnglish {
		return englishMessages
	}
	return bilingualMessages
}

var bilingualMessages = Messages{
	KindQueryEmpty:            {Title: "يرجى إدخال استفسارك", Detail: "Please enter your hotel query first"},
	KindCapabilityUnavailable: {Title: "ميزة التعرف على الصوت غير متاحة", Detail: "Voice recognition is not available on this system"},
	KindListeningStarted:      {Title: "🎤 الاستماع...", Detail: "Speak now to ask about Tunisian hotels"},
	KindRecognitionError:      {Title: "خطأ في التعرف على الصوت", Detail: "Could not recognize speech. Please try again."},
	KindConnectivityError:     {Title: "خطأ في الاتصال", Detail: "Could not connect to the server. Please try again."},
	KindSuccess:               {Title: "تم الحصول على التوصيات", Detail: "Hotel recommendations received successfully!"},
	KindAudioDownloaded:       {Title: "تم تحميل الملف الصوتي", Detail: "Audio file downloaded successfully!"},
	KindNoAudio:               {Title: "لا يوجد ملف صوتي", Detail: "This answer has no audio to download."},
	KindExportFailed:          {Title: "تعذر حفظ الملف الصوتي", Detail: "Could not save the audio file."},
}

var englishMessages = Messages{
	KindQueryEmpty:            {Title: "Query required", Detail: "Please enter your hotel query first"},
	KindCapabilityUnavailable: {Title: "Voice input unavailable", Detail: "Voice recognition is not available on this system"},
	KindListeningStarted:      {Title: "🎤 Listening…", Detail: "Speak now to ask about Tunisian hotels"},
	KindRecognitionError:      {Title: "Speech recognition error", Detail: "Could not recognize speech. Please try again."},
	KindConnectivityError:     {Title: "Connection error", Detail: "Could not connect to the server. Please try again."},
	KindSuccess:               {Title: "Recommendations ready", Detail: "Hotel recommendations received successfully!"},
	KindAudioDownloaded:       {Title: "Audio saved", Detail: "Audio file downloaded successfully!"},
	KindNoAudio:               {Title: "No audio", Detail: "This answer has no audio to download."},
	KindExportFailed:          {Title: "Audio export failed", Detail: "Could not save the audio file."},
}
