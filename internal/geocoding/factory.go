package geocoding

import (
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"time"

	"googlemaps.github.io/maps"
)

// ProviderType names a registered resolver implementation.
type ProviderType string

const (
	// ProviderTypeMock represents the offline stub resolver.
	ProviderTypeMock ProviderType = "mock"
	// ProviderTypeGoogle represents Google Maps geocoding provider.
	ProviderTypeGoogle ProviderType = "google"
	// ProviderTypeHere represents HERE geocoding provider.
	ProviderTypeHere ProviderType = "here"
	// ProviderTypeNominatim represents OpenStreetMap Nominatim geocoding provider.
	ProviderTypeNominatim ProviderType = "nominatim"
	// ProviderTypeVisicom represents Visicom Maps geocoding provider.
	ProviderTypeVisicom ProviderType = "visicom"
)

// Credentials holds the settings a provider reads at construction, keyed by lower-cased name
// (for example "api_key" taken from GOOGLE_API_KEY).
type Credentials map[string]string

// Lookup returns the named credential and whether it was present.
func (c Credentials) Lookup(name string) (string, bool) {
	value, ok := c[name]
	return value, ok
}

// require returns a non-empty credential or an error wrapping ErrMissingCredential.
func (c Credentials) require(provider ProviderType, name string) (string, error) {
	value, ok := c.Lookup(name)
	if !ok || value == "" {
		return "", fmt.Errorf("%w: %s requires %s_%s",
			ErrMissingCredential, provider, strings.ToUpper(string(provider)), strings.ToUpper(name))
	}

	return value, nil
}

// CredentialsFor extracts the entries of env whose key starts with the provider name followed by
// an underscore, ignoring case. The remainder of the key, lower-cased, names the credential.
func CredentialsFor(provider string, env map[string]string) Credentials {
	prefix := strings.ToUpper(provider) + "_"
	creds := Credentials{}
	for key, value := range env {
		if strings.HasPrefix(strings.ToUpper(key), prefix) {
			creds[strings.ToLower(key[len(prefix):])] = value
		}
	}

	return creds
}

// ProviderConfig holds configuration for creating a resolver.
type ProviderConfig struct {
	Type        ProviderType  // Type of provider to create
	Credentials Credentials   // Credentials extracted from the environment
	Timeout     time.Duration // Transport timeout of a single provider request
	Logger      *slog.Logger  // Logger for the provider
}

// Factory builds a resolver from its configuration.
type Factory func(config ProviderConfig) (Resolver, error)

var registry = map[ProviderType]Factory{
	ProviderTypeMock:      newStubResolver,
	ProviderTypeGoogle:    newGoogleResolver,
	ProviderTypeHere:      newHereResolver,
	ProviderTypeNominatim: newNominatimResolver,
	ProviderTypeVisicom:   newVisicomResolver,
}

// ParseProviderType normalizes a configured provider name ("Google", "HERE", ...) to its type.
func ParseProviderType(name string) ProviderType {
	return ProviderType(strings.ToLower(strings.TrimSpace(name)))
}

// Providers lists the registered provider types in alphabetical order.
func Providers() []ProviderType {
	types := make([]ProviderType, 0, len(registry))
	for providerType := range registry {
		types = append(types, providerType)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })

	return types
}

// NewProvider creates a resolver based on the provided configuration.
// It applies the Factory pattern to decouple resolver instantiation from the dispatch policy.
//
// Returns an error wrapping ErrUnknownProvider if the type is not registered, or the
// factory error (usually ErrMissingCredential) if the resolver cannot be built.
func NewProvider(config ProviderConfig) (Resolver, error) {
	factory, ok := registry[config.Type]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, config.Type)
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}

	return factory(config)
}

func newStubResolver(_ ProviderConfig) (Resolver, error) {
	return NewStubResolver(), nil
}

// newGoogleResolver creates a Google Maps resolver.
func newGoogleResolver(config ProviderConfig) (Resolver, error) {
	apiKey, err := config.Credentials.require(config.Type, "api_key")
	if err != nil {
		return nil, err
	}

	timeout := config.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	// The maps client throttles to 50 QPS unless told otherwise; the dispatcher never throttles.
	client, err := maps.NewClient(
		maps.WithAPIKey(apiKey),
		maps.WithRateLimit(0),
		maps.WithHTTPClient(&http.Client{Timeout: timeout}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create Google Maps client: %w", err)
	}

	return NewGoogleResolver(client, config.Logger), nil
}

// newHereResolver creates a HERE resolver.
func newHereResolver(config ProviderConfig) (Resolver, error) {
	appID, err := config.Credentials.require(config.Type, "app_id")
	if err != nil {
		return nil, err
	}
	appCode, err := config.Credentials.require(config.Type, "app_code")
	if err != nil {
		return nil, err
	}

	return NewHereResolver(appID, appCode, config.Timeout, config.Logger), nil
}

// newNominatimResolver creates a Nominatim resolver.
func newNominatimResolver(config ProviderConfig) (Resolver, error) {
	// Nominatim is free and doesn't require an API key
	baseURL, _ := config.Credentials.Lookup("url")
	userAgent, _ := config.Credentials.Lookup("user_agent")

	return NewNominatimResolver(baseURL, userAgent, config.Timeout, config.Logger), nil
}

// newVisicomResolver creates a Visicom resolver.
func newVisicomResolver(config ProviderConfig) (Resolver, error) {
	apiKey, err := config.Credentials.require(config.Type, "api_key")
	if err != nil {
		return nil, err
	}

	return NewVisicomResolver(apiKey, config.Timeout, config.Logger), nil
}
