// Package terminal provides the interactive client's presentation layer:
// color themes, command completion and table rendering.
package terminal

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
)

// Theme holds the color names used for the different output classes.
type Theme struct {
	Name         string `json:"name"`
	PromptColor  string `json:"promptColor"`
	TextColor    string `json:"textColor"`
	ErrorColor   string `json:"errorColor"`
	SuccessColor string `json:"successColor"`
	InfoColor    string `json:"infoColor"`
}

// ThemeManager loads, persists and applies the terminal theme.
type ThemeManager struct {
	currentTheme Theme
	configPath   string
}

// NewThemeManager loads the saved theme from ~/.ftamconfig.json, writing the
// default there on first run.
func NewThemeManager() (*ThemeManager, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get home directory: %v", err)
	}

	tm := &ThemeManager{
		configPath:   filepath.Join(homeDir, ".ftamconfig.json"),
		currentTheme: defaultTheme(),
	}

	if err := tm.LoadTheme(); err != nil {
		if os.IsNotExist(err) {
			if err := tm.SaveTheme(); err != nil {
				return nil, fmt.Errorf("failed to save default theme: %v", err)
			}
		} else {
			return nil, fmt.Errorf("failed to load theme: %v", err)
		}
	}

	return tm, nil
}

// DefaultThemeManager returns a manager with the built-in dark theme and no
// persistence. It is the fallback when the config file cannot be used; theme
// switches then last for the session only.
func DefaultThemeManager() *ThemeManager {
	return &ThemeManager{currentTheme: defaultTheme()}
}

func defaultTheme() Theme {
	return Theme{
		Name:         "dark",
		PromptColor:  "green",
		TextColor:    "white",
		ErrorColor:   "red",
		SuccessColor: "green",
		InfoColor:    "blue",
	}
}

// LoadTheme loads the theme from the config file.
func (tm *ThemeManager) LoadTheme() error {
	data, err := os.ReadFile(tm.configPath)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, &tm.currentTheme)
}

// SaveTheme persists the current theme. A manager without a config path
// keeps the theme in memory only.
func (tm *ThemeManager) SaveTheme() error {
	if tm.configPath == "" {
		return nil
	}
	data, err := json.MarshalIndent(tm.currentTheme, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(tm.configPath, data, 0o644)
}

// SetTheme switches to a named theme and persists the choice.
func (tm *ThemeManager) SetTheme(name string) error {
	switch name {
	case "light":
		tm.currentTheme = Theme{
			Name:         "light",
			PromptColor:  "black",
			TextColor:    "black",
			ErrorColor:   "red",
			SuccessColor: "green",
			InfoColor:    "blue",
		}
	case "dark":
		tm.currentTheme = defaultTheme()
	default:
		return fmt.Errorf("unknown theme: %s", name)
	}
	return tm.SaveTheme()
}

// GetThemeName returns the active theme's name.
func (tm *ThemeManager) GetThemeName() string {
	return tm.currentTheme.Name
}

// GetPromptColor returns the color used for prompts.
func (tm *ThemeManager) GetPromptColor() *color.Color {
	return getColorFromName(tm.currentTheme.PromptColor)
}

// GetTextColor returns the color used for normal text.
func (tm *ThemeManager) GetTextColor() *color.Color {
	return getColorFromName(tm.currentTheme.TextColor)
}

// GetErrorColor returns the color used for error messages.
func (tm *ThemeManager) GetErrorColor() *color.Color {
	return getColorFromName(tm.currentTheme.ErrorColor)
}

// GetSuccessColor returns the color used for success messages.
func (tm *ThemeManager) GetSuccessColor() *color.Color {
	return getColorFromName(tm.currentTheme.SuccessColor)
}

// GetInfoColor returns the color used for informational messages.
func (tm *ThemeManager) GetInfoColor() *color.Color {
	return getColorFromName(tm.currentTheme.InfoColor)
}

func getColorFromName(name string) *color.Color {
	switch name {
	case "black":
		return color.New(color.FgBlack)
	case "red":
		return color.New(color.FgRed)
	case "green":
		return color.New(color.FgGreen)
	case "yellow":
		return color.New(color.FgYellow)
	case "blue":
		return color.New(color.FgBlue)
	case "magenta":
		return color.New(color.FgMagenta)
	case "cyan":
		return color.New(color.FgCyan)
	case "white":
		return color.New(color.FgWhite)
	default:
		return color.New(color.FgWhite)
	}
}
