package utils

import "strings"

func IsStringInSlice(s string, slice []string) bool {
	for _, v := range slice {
		if v == s {
			return true
		}
	}
	return false
}

func UniqueStrings(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	unique := make([]string, 0, len(values))
	for _, v := range values {
		if _, exists := seen[v]; !exists {
			seen[v] = struct{}{}
			unique = append(unique, v)
		}
	}
	return unique
}

// SplitAddressList splits a comma or semicolon separated recipient string
func SplitAddressList(str string) []string {
	if strings.TrimSpace(str) == "" {
		return []string{}
	}
	fields := strings.FieldsFunc(str, func(r rune) bool {
		return r == ',' || r == ';'
	})
	result := make([]string, 0, len(fields))
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			result = append(result, f)
		}
	}
	return result
}
