package result

import (
	"errors"
	"fmt"
	"strings"

	theme "github.com/goliatone/go-theme"
)

// Tone classifies the badge styling.
type Tone string

const (
	ToneInitial      Tone = "initial"
	ToneCritical     Tone = "critical"
	ToneLevel        Tone = "level"
	ToneUndetermined Tone = "undetermined"
)

// Swatch is a background/foreground pair.
type Swatch struct {
	Background string `json:"background"`
	Color      string `json:"color"`
}

// Palette maps badge tones to colours.
type Palette struct {
	Critical     Swatch
	Level        Swatch
	Undetermined Swatch
}

// Swatch returns the colours for tone. The initial tone has no colours so the
// badge falls back to its stylesheet defaults.
func (p Palette) Swatch(tone Tone) Swatch {
	switch tone {
	case ToneCritical:
		return p.Critical
	case ToneLevel:
		return p.Level
	case ToneUndetermined:
		return p.Undetermined
	default:
		return Swatch{}
	}
}

const (
	tokenCriticalBackground     = "badge.critical.background"
	tokenCriticalColor          = "badge.critical.color"
	tokenLevelBackground        = "badge.level.background"
	tokenLevelColor             = "badge.level.color"
	tokenUndeterminedBackground = "badge.undetermined.background"
	tokenUndeterminedColor      = "badge.undetermined.color"
)

// DefaultManifest is the built-in badge theme with a dark variant.
func DefaultManifest() *theme.Manifest {
	return &theme.Manifest{
		Name:    DefaultThemeName,
		Version: "1.0.0",
		Tokens: map[string]string{
			tokenCriticalBackground:     "rgba(248, 113, 113, 0.18)",
			tokenCriticalColor:          "#b91c1c",
			tokenLevelBackground:        "rgba(37, 99, 235, 0.12)",
			tokenLevelColor:             "#1d4ed8",
			tokenUndeterminedBackground: "rgba(247, 144, 9, 0.16)",
			tokenUndeterminedColor:      "#b45309",
		},
		Variants: map[string]theme.Variant{
			"dark": {
				Tokens: map[string]string{
					tokenCriticalBackground:     "rgba(248, 113, 113, 0.32)",
					tokenCriticalColor:          "#fecaca",
					tokenLevelBackground:        "rgba(59, 130, 246, 0.28)",
					tokenLevelColor:             "#bfdbfe",
					tokenUndeterminedBackground: "rgba(251, 191, 36, 0.28)",
					tokenUndeterminedColor:      "#fde68a",
				},
			},
		},
	}
}

// DefaultThemeName is the name DefaultManifest registers under.
const DefaultThemeName = "ispdn"

// ErrUnknownVariant reports a variant the selected theme does not declare.
var ErrUnknownVariant = errors.New("result: unknown theme variant")

// DefaultPalette resolves the base variant of DefaultManifest.
func DefaultPalette() Palette {
	return PaletteFromManifest(DefaultManifest(), "")
}

// NewThemeRegistry registers DefaultManifest followed by manifests, so an
// operator theme may replace the built-in one by reusing its name.
func NewThemeRegistry(manifests ...*theme.Manifest) (*theme.MemoryRegistry, error) {
	registry := theme.NewRegistry()
	if err := registry.Register(DefaultManifest()); err != nil {
		return nil, fmt.Errorf("result: register default theme: %w", err)
	}
	for _, manifest := range manifests {
		if manifest == nil {
			continue
		}
		if err := registry.Register(manifest); err != nil {
			return nil, fmt.Errorf("result: register theme %q: %w", manifest.Name, err)
		}
	}
	return registry, nil
}

// ResolvePalette selects themeName (DefaultThemeName when blank) from
// provider and builds the palette for variant. A variant the theme does not
// declare is an error.
func ResolvePalette(provider theme.ThemeProvider, themeName, variant string) (Palette, error) {
	selector := theme.Selector{Registry: provider, DefaultTheme: DefaultThemeName}
	selection, err := selector.Select(themeName, strings.TrimSpace(variant))
	if err != nil {
		return Palette{}, fmt.Errorf("result: select theme: %w", err)
	}
	if selection.Variant != "" {
		if _, ok := selection.Manifest.Variants[selection.Variant]; !ok {
			return Palette{}, fmt.Errorf("%w: %q (theme %s)", ErrUnknownVariant, selection.Variant, selection.Manifest.Name)
		}
	}
	return paletteFromTokens(selection.Tokens()), nil
}

// PaletteFromManifest resolves badge colours from manifest tokens for
// variant. An undeclared variant yields the base tokens.
func PaletteFromManifest(manifest *theme.Manifest, variant string) Palette {
	if manifest == nil {
		return paletteFromTokens(nil)
	}
	return paletteFromTokens(manifest.TokensForVariant(strings.TrimSpace(variant)))
}

// paletteFromTokens fills tokens missing from a partial theme with the
// built-in ones.
func paletteFromTokens(tokens map[string]string) Palette {
	merged := DefaultManifest().TokensForVariant("")
	for key, value := range tokens {
		if strings.TrimSpace(value) != "" {
			merged[key] = value
		}
	}
	return Palette{
		Critical:     Swatch{Background: merged[tokenCriticalBackground], Color: merged[tokenCriticalColor]},
		Level:        Swatch{Background: merged[tokenLevelBackground], Color: merged[tokenLevelColor]},
		Undetermined: Swatch{Background: merged[tokenUndeterminedBackground], Color: merged[tokenUndeterminedColor]},
	}
}
