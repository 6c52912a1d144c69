package options

import (
	"os"
	"strings"
)

const (
	flagPrefix = "--"
	// DefaultEnvPrefix namespaces environment overrides, e.g. twisty_alg.
	DefaultEnvPrefix = "twisty_"
	// KeyAlg is the option that carries the move sequence.
	KeyAlg = "alg"
	// minExplicitAlgMoves is the move count below which a positional bucket
	// replaces an explicit alg.
	minExplicitAlgMoves = 5
)

// Kind tags an option value.
type Kind int

const (
	// Flag marks an option that was present without content.
	Flag Kind = iota + 1
	// Text marks an option with a textual value.
	Text
)

// Value is a parsed option value.
type Value struct {
	Kind Kind
	Text string
}

// Set is the result of parsing a token sequence.
type Set struct {
	values     map[string]Value
	order      []string
	positional string
	hasPos     bool
	lookupEnv  func(string) (string, bool)
	envPrefix  string
}

// Option configures a Set.
type Option func(*Set)

// WithEnvPrefix sets the namespace used for environment overrides.
func WithEnvPrefix(prefix string) Option {
	return func(s *Set) {
		s.envPrefix = prefix
	}
}

// WithLookupEnv replaces os.LookupEnv, mainly for tests.
func WithLookupEnv(fn func(string) (string, bool)) Option {
	return func(s *Set) {
		if fn != nil {
			s.lookupEnv = fn
		}
	}
}

// Parse aggregates tokens into a Set. A token starting with "--" opens a new
// option (optionally "--key=value"); following unflagged tokens are appended
// to it. Tokens before the first flag form the positional bucket.
func Parse(tokens []string, opts ...Option) Set {
	set := Set{
		values:    make(map[string]Value),
		lookupEnv: os.LookupEnv,
		envPrefix: DefaultEnvPrefix,
	}
	for _, opt := range opts {
		opt(&set)
	}

	var (
		current    string
		open       bool
		acc        []string
		positional []string
	)
	flush := func() {
		if !open {
			return
		}
		set.store(current, strings.TrimSpace(strings.Join(acc, " ")))
		open = false
		current = ""
		acc = nil
	}

	for _, tok := range tokens {
		if strings.HasPrefix(tok, flagPrefix) {
			flush()
			body := tok[len(flagPrefix):]
			if eq := strings.IndexByte(body, '='); eq >= 0 {
				current = body[:eq]
				acc = []string{body[eq+1:]}
			} else {
				current = body
				acc = nil
			}
			open = true
			continue
		}
		if open {
			acc = append(acc, tok)
		} else {
			positional = append(positional, tok)
		}
	}
	flush()

	if len(positional) > 0 {
		set.positional = strings.TrimSpace(strings.Join(positional, " "))
		set.hasPos = true
	}
	return set
}

func (s *Set) store(key, text string) {
	if _, exists := s.values[key]; !exists {
		s.order = append(s.order, key)
	}
	if text == "" {
		s.values[key] = Value{Kind: Flag}
		return
	}
	s.values[key] = Value{Kind: Text, Text: text}
}

// Lookup returns the raw parsed value for key.
func (s Set) Lookup(key string) (Value, bool) {
	v, ok := s.values[key]
	return v, ok
}

// Has reports whether key was supplied on the command line, with or without content.
func (s Set) Has(key string) bool {
	_, ok := s.values[key]
	return ok
}

// Keys returns the supplied option names in first-seen order.
func (s Set) Keys() []string {
	return append([]string(nil), s.order...)
}

// Positional returns the space-joined tokens that preceded the first flag.
func (s Set) Positional() (string, bool) {
	return s.positional, s.hasPos
}

// EnvKey returns the environment variable consulted for key.
func (s Set) EnvKey(key string) string {
	return s.envPrefix + key
}

// Get resolves key from the parsed tokens, then from the environment override,
// and returns def when neither yields usable text. A Flag value counts as
// unusable, as does text that is blank after trimming.
func (s Set) Get(key, def string) string {
	candidate, ok := s.values[key]
	if !ok && s.lookupEnv != nil {
		if env, found := s.lookupEnv(s.EnvKey(key)); found {
			candidate, ok = Value{Kind: Text, Text: env}, true
		}
	}
	if !ok {
		return def
	}
	switch candidate.Kind {
	case Text:
		if strings.TrimSpace(candidate.Text) == "" {
			return def
		}
		return candidate.Text
	default:
		return def
	}
}

// Alg resolves the move sequence. The positional bucket wins when no alg
// option was supplied or when the resolved alg has fewer than five moves.
func (s Set) Alg(def string) string {
	alg := s.Get(KeyAlg, def)
	if !s.hasPos {
		return alg
	}
	if !s.suppliedAlg() || len(strings.Fields(alg)) < minExplicitAlgMoves {
		return s.positional
	}
	return alg
}

// suppliedAlg reports whether the tokens carried an alg with content. A bare
// --alg counts as not supplied.
func (s Set) suppliedAlg() bool {
	v, ok := s.values[KeyAlg]
	return ok && v.Kind == Text
}

// Bool interprets key as a switch. A bare flag is true; text is parsed
// leniently ("false", "0", "no", "off" are false). Missing keys yield def.
func (s Set) Bool(key string, def bool) bool {
	v, ok := s.values[key]
	if !ok {
		if s.lookupEnv != nil {
			if env, found := s.lookupEnv(s.EnvKey(key)); found && strings.TrimSpace(env) != "" {
				return parseBool(env, def)
			}
		}
		return def
	}
	if v.Kind == Flag {
		return true
	}
	return parseBool(v.Text, def)
}

func parseBool(text string, def bool) bool {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return def
	}
}
