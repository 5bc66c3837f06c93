package tui

import (
	"testing"
)

func TestParseCommand(t *testing.T) {
	name, args := parseCommand("  Open   ?registry=a  ")
	if name != "open" {
		t.Fatalf("expected lower-cased name, got %q", name)
	}
	if len(args) != 1 || args[0] != "?registry=a" {
		t.Fatalf("unexpected args %v", args)
	}

	name, args = parseCommand("   ")
	if name != "" || args != nil {
		t.Fatalf("expected empty parse, got %q %v", name, args)
	}
}

func TestResolveCommandAliases(t *testing.T) {
	cases := map[string]string{
		"ctx":        "context",
		"home":       "registries",
		"q":          "quit",
		"EXIT":       "quit",
		"validate":   "validate",
		" refresh  ": "refresh",
	}
	for input, want := range cases {
		descriptor, ok := resolveCommand(input)
		if !ok {
			t.Fatalf("expected %q to resolve", input)
		}
		if descriptor.Name != want {
			t.Fatalf("expected %q to resolve to %q, got %q", input, want, descriptor.Name)
		}
	}
	if _, ok := resolveCommand("nope"); ok {
		t.Fatalf("expected unknown command to fail")
	}
}

func TestMatchCommands(t *testing.T) {
	got := matchCommands("re")
	want := []string{"registries", "refresh"}
	if !equalStrings(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	if all := matchCommands(""); len(all) != len(commandRegistry()) {
		t.Fatalf("expected every command for an empty prefix, got %v", all)
	}
}

func TestContextDisplayName(t *testing.T) {
	if got := contextDisplayName(ContextOption{Name: " prod "}, 0); got != "prod" {
		t.Fatalf("unexpected name %q", got)
	}
	if got := contextDisplayName(ContextOption{APIURL: "http://localhost:3000"}, 0); got != "http://localhost:3000" {
		t.Fatalf("unexpected name %q", got)
	}
	if got := contextDisplayName(ContextOption{}, 2); got != "context-3" {
		t.Fatalf("unexpected name %q", got)
	}
}

func TestHintLineFollowsPage(t *testing.T) {
	m := Model{screen: newScreen()}
	if page := m.shortcutPage(false); page != shortcutPageRegistries {
		t.Fatalf("expected registries page, got %v", page)
	}

	m.commandActive = true
	if page := m.shortcutPage(false); page != shortcutPageCommandInput {
		t.Fatalf("expected command page, got %v", page)
	}
	m.commandActive = false

	m.helpActive = true
	if page := m.shortcutPage(true); page != shortcutPageHelp {
		t.Fatalf("expected help page, got %v", page)
	}
	if page := m.shortcutPage(false); page != shortcutPageRegistries {
		t.Fatalf("help overlay should be ignored when asked, got %v", page)
	}
}

func TestIsShortcut(t *testing.T) {
	if !isShortcut(keyMsg(" "), shortcutToggleGroup) {
		t.Fatalf("expected space to toggle a group")
	}
	if !isShortcut(keyMsg("["), shortcutHistoryBack) {
		t.Fatalf("expected [ to go back")
	}
	if isShortcut(keyMsg("x"), shortcutQuit) {
		t.Fatalf("x must not quit")
	}
}
