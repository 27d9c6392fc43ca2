package speech

// Default voice for the cloud engine when no voice matches the language.
// Full list: https://learn.microsoft.com/en-us/azure/ai-services/speech-service/language-support
const DefaultVoice = "fr-FR-DeniseNeural"

// Audio format returned by Azure and expected by the player.
const DefaultAudioFormat = "riff-24khz-16bit-mono-pcm"

// Audio parameters matching the default format.
const (
	SampleRate   = 24000
	ChannelCount = 1
	BitDepth     = 16
)

// Env var names for Azure Speech credentials.
const (
	EnvAzureSpeechKey    = "AZURE_SPEECH_KEY"
	EnvAzureSpeechRegion = "AZURE_SPEECH_REGION"
)

// DefaultLanguage is the drill language used when a caller passes none.
const DefaultLanguage = "fr-FR"

// DefaultPreferQuality lists language families for which a voice flagged
// as higher quality is preferred over the first match.
var DefaultPreferQuality = []string{"fr"}

// Utterance is one request handed to an Engine.
type Utterance struct {
	Text  string
	Lang  string
	Rate  float64 // 1.0 = engine's normal speed
	Voice string  // voice name; "" lets the engine pick its default
}
