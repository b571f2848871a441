package environment

import "sort"

const (
	NameDevelopment = "development"
	NameProduction  = "production"
)

// Selected names the preset compiled into this binary. Override at build time:
//
//	go build -ldflags "-X coffee-env/internal/environment.Selected=production" ./cmd/envd
var Selected = NameDevelopment

// Development returns the values of a local setup: the API on 127.0.0.1:5000
// and the app served on localhost:8100.
func Development() Environment {
	return Environment{
		Production:   false,
		APIServerURL: "http://127.0.0.1:5000",
		Auth: Auth{
			ProviderDomain: "dev-m-guru",
			Audience:       "http://localhost:5000",
			ClientID:       "6z07X9iEwo5w73wU1YCurK0S1Ni2L7iR",
			CallbackURL:    "http://localhost:8100",
		},
	}
}

// Production only sets the mode. Everything else is injected at deploy time.
func Production() Environment {
	return Environment{Production: true}
}

var presets = map[string]func() Environment{
	NameDevelopment: Development,
	NameProduction:  Production,
}

func Preset(name string) (Environment, bool) {
	fn, ok := presets[name]
	if !ok {
		return Environment{}, false
	}
	return fn(), true
}

func PresetNames() []string {
	out := make([]string, 0, len(presets))
	for name := range presets {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
