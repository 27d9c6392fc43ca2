package speech

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"math"
	"os/exec"
	"runtime"
	"strconv"
	"strings"

	"github.com/hammamikhairi/parlons/internal/domain"
	"github.com/hammamikhairi/parlons/internal/logger"
)

// Compile-time interface check.
var _ Engine = (*CommandEngine)(nil)

// Words per minute both say and espeak-ng use at their normal speed.
const normalWordsPerMinute = 175

// Synthesizer programs the command engine knows how to drive.
const (
	ProgramSay     = "say"
	ProgramEspeak  = "espeak-ng"
	programDefault = ""
)

// ErrNoSynthesizer is returned when no OS synthesizer is installed.
var ErrNoSynthesizer = errors.New("no speech synthesizer found (install espeak-ng or use macOS say)")

// CommandOption configures the CommandEngine.
type CommandOption func(*CommandEngine)

// WithProgram forces a synthesizer program instead of auto-detecting one.
func WithProgram(name string) CommandOption {
	return func(e *CommandEngine) { e.program = name }
}

// CommandEngine speaks through the operating system's synthesizer:
// say on macOS, espeak-ng elsewhere.
type CommandEngine struct {
	program string
	path    string
	log     *logger.Logger

	// runOutput is swapped in tests.
	runOutput func(ctx context.Context, name string, args ...string) ([]byte, error)
}

// NewCommandEngine locates a synthesizer program. Returns
// ErrNoSynthesizer when none is on PATH.
func NewCommandEngine(log *logger.Logger, opts ...CommandOption) (*CommandEngine, error) {
	e := &CommandEngine{
		program:   programDefault,
		log:       log,
		runOutput: runOutput,
	}
	for _, opt := range opts {
		opt(e)
	}

	if e.program == programDefault {
		e.program = ProgramEspeak
		if runtime.GOOS == "darwin" {
			e.program = ProgramSay
		}
	}

	path, err := exec.LookPath(e.program)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoSynthesizer, err)
	}
	e.path = path

	log.Debug("command engine: using %s", path)
	return e, nil
}

// Voices lists the synthesizer's installed voices.
func (e *CommandEngine) Voices(ctx context.Context) ([]domain.Voice, error) {
	switch e.program {
	case ProgramSay:
		out, err := e.runOutput(ctx, e.path, "-v", "?")
		if err != nil {
			return nil, fmt.Errorf("listing say voices: %w", err)
		}
		return parseSayVoices(string(out)), nil
	default:
		out, err := e.runOutput(ctx, e.path, "--voices")
		if err != nil {
			return nil, fmt.Errorf("listing espeak voices: %w", err)
		}
		return parseEspeakVoices(string(out)), nil
	}
}

// Speak runs the synthesizer and waits for it to exit. Cancelling ctx
// kills the process, which stops the audio.
func (e *CommandEngine) Speak(ctx context.Context, u Utterance) error {
	args := e.args(u)
	cmd := exec.CommandContext(ctx, e.path, args...)

	e.log.Debug("command engine: %s %s", e.program, strings.Join(args[:len(args)-1], " "))
	err := cmd.Run()
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err != nil {
		return fmt.Errorf("%s: %w", e.program, err)
	}
	return nil
}

// args builds the command line for u. The text is always last.
func (e *CommandEngine) args(u Utterance) []string {
	rate := u.Rate
	if rate <= 0 {
		rate = 1
	}
	wpm := strconv.Itoa(int(math.Round(float64(normalWordsPerMinute) * rate)))

	var args []string
	switch e.program {
	case ProgramSay:
		if u.Voice != "" {
			args = append(args, "-v", u.Voice)
		}
		args = append(args, "-r", wpm)
	default:
		voice := u.Voice
		if voice == "" {
			voice = strings.ToLower(u.Lang)
		}
		if voice != "" {
			args = append(args, "-v", voice)
		}
		args = append(args, "-s", wpm)
	}
	return append(args, u.Text)
}

// parseSayVoices parses `say -v ?` output, one voice per line:
//
//	Amélie (Enhanced)   fr_CA    # Bonjour, je m’appelle Amélie.
func parseSayVoices(out string) []domain.Voice {
	var voices []domain.Voice
	sc := bufio.NewScanner(strings.NewReader(out))
	for sc.Scan() {
		line := sc.Text()
		if i := strings.Index(line, "#"); i >= 0 {
			line = line[:i]
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		locale := fields[len(fields)-1]
		name := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(line), locale))
		lower := strings.ToLower(name)
		voices = append(voices, domain.Voice{
			Name:    name,
			Lang:    strings.ReplaceAll(locale, "_", "-"),
			Quality: strings.Contains(lower, "(enhanced)") || strings.Contains(lower, "(premium)"),
		})
	}
	return voices
}

// parseEspeakVoices parses `espeak-ng --voices` output:
//
//	Pty Language       Age/Gender VoiceName          File                 Other Languages
//	 5  fr-fr           --/M      French_(France)    roa/fr
//
// The language column doubles as the -v argument.
func parseEspeakVoices(out string) []domain.Voice {
	var voices []domain.Voice
	sc := bufio.NewScanner(strings.NewReader(out))
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) < 4 || fields[0] == "Pty" {
			continue
		}
		lang := fields[1]
		voices = append(voices, domain.Voice{
			Name:    lang,
			Lang:    lang,
			Default: lang == "en",
		})
	}
	return voices
}

func runOutput(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}
