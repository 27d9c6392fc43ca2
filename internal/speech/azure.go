package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/hammamikhairi/parlons/internal/domain"
	"github.com/hammamikhairi/parlons/internal/logger"
)

// AzureOption configures the Azure TTS client.
type AzureOption func(*AzureClient)

// WithVoice sets the voice used when an utterance names none.
func WithVoice(voice string) AzureOption {
	return func(c *AzureClient) {
		c.voice = voice
	}
}

// WithAudioFormat sets the audio output format.
func WithAudioFormat(format string) AzureOption {
	return func(c *AzureClient) {
		c.format = format
	}
}

// WithHTTPTimeout sets the HTTP client timeout for TTS requests.
func WithHTTPTimeout(d time.Duration) AzureOption {
	return func(c *AzureClient) {
		c.httpClient.Timeout = d
	}
}

// WithEndpoint overrides the regional base URL. Used by tests.
func WithEndpoint(baseURL string) AzureOption {
	return func(c *AzureClient) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// AzureClient talks to the Azure Cognitive Services speech REST API.
type AzureClient struct {
	subscriptionKey string
	baseURL         string
	voice           string
	format          string
	httpClient      *http.Client
	log             *logger.Logger
}

// NewAzureClient creates an Azure TTS client with the given credentials.
func NewAzureClient(key, region string, log *logger.Logger, opts ...AzureOption) *AzureClient {
	c := &AzureClient{
		subscriptionKey: key,
		baseURL:         fmt.Sprintf("https://%s.tts.speech.microsoft.com", region),
		voice:           DefaultVoice,
		format:          DefaultAudioFormat,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		log: log,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Voice returns the fallback voice name.
func (c *AzureClient) Voice() string { return c.voice }

// azureVoice is one entry of the voices/list response.
type azureVoice struct {
	ShortName string `json:"ShortName"`
	Locale    string `json:"Locale"`
	VoiceType string `json:"VoiceType"`
}

// ListVoices returns every voice the region offers. Neural voices are
// flagged as higher quality; the configured voice is the default.
func (c *AzureClient) ListVoices(ctx context.Context) ([]domain.Voice, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/cognitiveservices/voices/list", nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Ocp-Apim-Subscription-Key", c.subscriptionKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("voices request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("azure voices error %d: %s", resp.StatusCode, string(body))
	}

	var raw []azureVoice
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decoding voices: %w", err)
	}

	voices := make([]domain.Voice, 0, len(raw))
	for _, v := range raw {
		voices = append(voices, domain.Voice{
			Name:    v.ShortName,
			Lang:    v.Locale,
			Quality: strings.EqualFold(v.VoiceType, "Neural"),
			Default: v.ShortName == c.voice,
		})
	}
	c.log.Debug("azure tts: %d voices listed", len(voices))
	return voices, nil
}

// Synthesize converts an utterance to speech audio data (WAV bytes).
func (c *AzureClient) Synthesize(ctx context.Context, u Utterance) ([]byte, error) {
	voice := c.voiceFor(u)
	ssml := buildSSML(u.Text, u.Lang, voice, u.Rate)
	c.log.Debug("azure tts: synthesizing %d chars with voice %s", len(u.Text), voice)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/cognitiveservices/v1", strings.NewReader(ssml))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Ocp-Apim-Subscription-Key", c.subscriptionKey)
	req.Header.Set("Content-Type", "application/ssml+xml")
	req.Header.Set("X-Microsoft-OutputFormat", c.format)
	req.Header.Set("User-Agent", "Parlons/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tts request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("azure tts error %d: %s", resp.StatusCode, string(body))
	}

	audioData, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading audio data: %w", err)
	}

	c.log.Debug("azure tts: got %d bytes of audio", len(audioData))
	return audioData, nil
}

// voiceFor returns the voice an utterance will be spoken with.
func (c *AzureClient) voiceFor(u Utterance) string {
	if u.Voice != "" {
		return u.Voice
	}
	return c.voice
}

// buildSSML creates SSML markup for the synthesis request.
func buildSSML(text, lang, voice string, rate float64) string {
	if lang == "" {
		lang = DefaultLanguage
	}
	var escaped bytes.Buffer
	_ = xml.EscapeText(&escaped, []byte(text))

	return fmt.Sprintf(
		`<speak version='1.0' xml:lang='%s'><voice xml:lang='%s' name='%s'><prosody rate='%s'>%s</prosody></voice></speak>`,
		lang, lang, voice, prosodyRate(rate), escaped.String(),
	)
}

// prosodyRate renders a rate multiplier as a relative SSML percentage,
// e.g. 0.9 -> "-10%".
func prosodyRate(rate float64) string {
	if rate <= 0 {
		rate = 1
	}
	return fmt.Sprintf("%+d%%", int(math.Round((rate-1)*100)))
}
