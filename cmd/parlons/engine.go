package main

import (
	"github.com/hammamikhairi/parlons/internal/config"
	"github.com/hammamikhairi/parlons/internal/logger"
	"github.com/hammamikhairi/parlons/internal/speech"
)

// buildEngine picks the speech engine. "auto" prefers Azure when
// credentials are set, then a local say/espeak binary, then silence.
// Any engine that fails to start degrades to the silent engine so the
// drill still runs with on-screen text.
func buildEngine(cfg config.Speech, log *logger.Logger) speech.Engine {
	switch cfg.Engine {
	case config.EngineSilent:
		return speech.NewSilentEngine(log)

	case config.EngineAzure:
		if e := azureEngine(cfg, log); e != nil {
			return e
		}

	case config.EngineSay, config.EngineEspeak:
		program := speech.ProgramSay
		if cfg.Engine == config.EngineEspeak {
			program = speech.ProgramEspeak
		}
		e, err := speech.NewCommandEngine(log, speech.WithProgram(program))
		if err == nil {
			return e
		}
		log.Error("speech: %s unavailable, speech disabled: %v", program, err)

	default:
		if cfg.HasAzure() {
			if e := azureEngine(cfg, log); e != nil {
				return e
			}
		}
		e, err := speech.NewCommandEngine(log)
		if err == nil {
			log.Info("speech: using local synthesizer")
			return e
		}
		log.Info("speech: no synthesizer found (%v); set AZURE_SPEECH_KEY and AZURE_SPEECH_REGION or install espeak-ng", err)
	}

	return speech.NewSilentEngine(log)
}

func azureEngine(cfg config.Speech, log *logger.Logger) speech.Engine {
	player, err := speech.NewPlayer(log)
	if err != nil {
		log.Error("speech: audio player init failed, cloud speech disabled: %v", err)
		return nil
	}

	var opts []speech.AzureOption
	if cfg.AzureVoice != "" {
		opts = append(opts, speech.WithVoice(cfg.AzureVoice))
	}
	client := speech.NewAzureClient(cfg.AzureKey, cfg.AzureRegion, log, opts...)
	cache := speech.NewAudioCache(cfg.CacheDir, cfg.DiskCache, log)

	log.Info("speech: Azure TTS enabled (voice=%s, region=%s)", client.Voice(), cfg.AzureRegion)
	return speech.NewCloudEngine(client, cache, player, log)
}
