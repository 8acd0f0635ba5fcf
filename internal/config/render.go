package config

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// sectionOf splits "view.mode" into ("view", "mode"); top-level keys have no section.
func sectionOf(key string) (section, name string) {
	if i := strings.IndexByte(key, '.'); i >= 0 {
		return key[:i], key[i+1:]
	}
	return "", key
}

// groupOptions buckets options by section, keeping first-seen order.
func groupOptions(opts []ConfigOption) (order []string, bySection map[string][]ConfigOption) {
	bySection = make(map[string][]ConfigOption)
	for _, o := range opts {
		section, name := sectionOf(o.Key)
		if _, ok := bySection[section]; !ok {
			order = append(order, section)
		}
		bySection[section] = append(bySection[section], ConfigOption{Key: name, Default: o.Default, Comment: o.Comment})
	}
	return order, bySection
}

// RenderDefaultTOML renders a TOML config with defaults from GetConfigOptions.
func RenderDefaultTOML() string {
	order, bySection := groupOptions(GetConfigOptions())
	lines := []string{"# MarkSmart configuration (TOML)", ""}
	for _, o := range bySection[""] {
		lines = append(lines, optionLines(o)...)
	}
	for _, section := range order {
		if section == "" {
			continue
		}
		lines = append(lines, "["+section+"]")
		for _, o := range bySection[section] {
			lines = append(lines, optionLines(o)...)
		}
	}
	return strings.Join(lines, "\n")
}

// UpdateTOML merges missing defaults into existing and comments out keys the
// schema no longer knows. Missing keys land inside their existing section so
// no table is declared twice.
func UpdateTOML(existing string) (string, bool) {
	lines := strings.Split(existing, "\n")
	known := make(map[string]bool)
	for _, o := range GetConfigOptions() {
		known[o.Key] = true
	}

	out := make([]string, 0, len(lines))
	seen := make(map[string]bool)
	// sectionEnd is the out index just past the last non-blank line of a section.
	sectionEnd := map[string]int{}
	firstHeader := -1
	current := ""
	changed := false

	for _, line := range lines {
		trim := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(trim, "[") && strings.HasSuffix(trim, "]"):
			current = strings.TrimSpace(trim[1 : len(trim)-1])
			if firstHeader < 0 {
				firstHeader = len(out)
			}
			out = append(out, line)
			sectionEnd[current] = len(out)
			continue
		case trim == "" || strings.HasPrefix(trim, "#"):
			out = append(out, line)
			continue
		}
		key, ok := parseTOMLKey(line)
		full := key
		if ok && current != "" {
			full = current + "." + key
		}
		if ok && !known[full] {
			indent := line[:len(line)-len(strings.TrimLeft(line, " \t"))]
			out = append(out, indent+"# OUTDATED: option removed from config schema", indent+"# "+strings.TrimLeft(line, " \t"))
			changed = true
		} else {
			seen[full] = ok
			out = append(out, line)
		}
		sectionEnd[current] = len(out)
	}

	var missing []ConfigOption
	for _, o := range GetConfigOptions() {
		if !seen[o.Key] {
			missing = append(missing, o)
		}
	}
	if len(missing) == 0 {
		return strings.Join(out, "\n"), changed
	}

	order, bySection := groupOptions(missing)
	type insertion struct {
		at    int
		lines []string
	}
	var inserts []insertion
	var appended []string
	for _, section := range order {
		var block []string
		for _, o := range bySection[section] {
			block = append(block, optionLines(o)...)
		}
		if section == "" {
			at := len(out)
			if firstHeader >= 0 {
				at = firstHeader
			}
			inserts = append(inserts, insertion{at: at, lines: block})
			continue
		}
		if end, ok := sectionEnd[section]; ok {
			inserts = append(inserts, insertion{at: end, lines: block})
			continue
		}
		appended = append(appended, "["+section+"]")
		appended = append(appended, block...)
	}
	// Apply from the bottom up so earlier indexes stay valid.
	sort.SliceStable(inserts, func(i, j int) bool { return inserts[i].at > inserts[j].at })
	for _, ins := range inserts {
		tail := append([]string{}, out[ins.at:]...)
		out = append(append(out[:ins.at], ins.lines...), tail...)
	}
	if len(appended) > 0 {
		out = append(out, "", "# Added by config update")
		out = append(out, appended...)
	}
	return strings.Join(out, "\n"), true
}

func parseTOMLKey(line string) (string, bool) {
	idx := strings.Index(line, "=")
	if idx == -1 {
		return "", false
	}
	key := strings.TrimSpace(line[:idx])
	if key == "" || strings.HasPrefix(key, "[") || strings.HasPrefix(key, "\"") || strings.HasPrefix(key, "'") {
		return "", false
	}
	return key, true
}

// optionLines renders one option as comment, assignment and a blank line.
func optionLines(o ConfigOption) []string {
	var lines []string
	if o.Comment != "" {
		lines = append(lines, "# "+o.Comment)
	}
	return append(lines, o.Key+" = "+tomlValue(o.Default), "")
}

func tomlValue(value any) string {
	switch v := value.(type) {
	case string:
		return strconv.Quote(v)
	case []string:
		quoted := make([]string, len(v))
		for i, s := range v {
			quoted[i] = strconv.Quote(s)
		}
		return "[" + strings.Join(quoted, ", ") + "]"
	default:
		return fmt.Sprintf("%v", v)
	}
}
