package config

import "sync"

// Settings is a snapshot of the tunable runtime configuration: the remote
// model endpoint, the persona text prepended to every prompt, and the
// synthesis voice. Updated at process scope through the /api/config admin
// operation.
type Settings struct {
	ModelURL    string `json:"model_url"`
	ModelName   string `json:"model_name"`
	Persona     string `json:"persona"`
	Voice       string `json:"voice"`
	VoiceRate   string `json:"voice_rate"`
	VoiceVolume string `json:"voice_volume"`
}

// Runtime holds the mutable settings shared by all sessions. All access goes
// through Snapshot/Update so no caller sees a half-applied change.
type Runtime struct {
	mu       sync.RWMutex
	settings Settings
}

// NewRuntime seeds the runtime settings from static configuration, using the
// default persona when none is configured.
func NewRuntime(cfg *Config) *Runtime {
	return &Runtime{
		settings: Settings{
			ModelURL:    cfg.ModelURL,
			ModelName:   cfg.ModelName,
			Persona:     DefaultPersona,
			Voice:       cfg.Voice,
			VoiceRate:   cfg.VoiceRate,
			VoiceVolume: cfg.VoiceVolume,
		},
	}
}

// Snapshot returns a copy of the current settings.
func (r *Runtime) Snapshot() Settings {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.settings
}

// Update applies the non-empty fields of s and returns the resulting settings.
func (r *Runtime) Update(s Settings) Settings {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s.ModelURL != "" {
		r.settings.ModelURL = s.ModelURL
	}
	if s.ModelName != "" {
		r.settings.ModelName = s.ModelName
	}
	if s.Persona != "" {
		r.settings.Persona = s.Persona
	}
	if s.Voice != "" {
		r.settings.Voice = s.Voice
	}
	if s.VoiceRate != "" {
		r.settings.VoiceRate = s.VoiceRate
	}
	if s.VoiceVolume != "" {
		r.settings.VoiceVolume = s.VoiceVolume
	}
	return r.settings
}
