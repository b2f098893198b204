package handlers_test

import "strings"

func contains(s, substr string) bool { return strings.Contains(s, substr) }

func indexOf(s, substr string) int { return strings.Index(s, substr) }
