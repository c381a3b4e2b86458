// Copyright 2016-2025 Fraunhofer AISEC
//
// SPDX-License-Identifier: Apache-2.0
//
//                                 /$$$$$$  /$$                                     /$$
//                               /$$__  $$|__/                                    | $$
//   /$$$$$$$  /$$$$$$  /$$$$$$$ | $$  \__/ /$$  /$$$$$$  /$$$$$$/$$$$   /$$$$$$  /$$$$$$    /$$$$$$
//  /$$_____/ /$$__  $$| $$__  $$| $$$$    | $$ /$$__  $$| $$_  $$_  $$ |____  $$|_  $$_/   /$$__  $$
// | $$      | $$  \ $$| $$  \ $$| $$_/    | $$| $$  \__/| $$ \ $$ \ $$  /$$$$$$$  | $$    | $$$$$$$$
// | $$      | $$  | $$| $$  | $$| $$      | $$| $$      | $$ | $$ | $$ /$$__  $$  | $$ /$$| $$_____/
// |  $$$$$$$|  $$$$$$/| $$  | $$| $$      | $$| $$      | $$ | $$ | $$|  $$$$$$$  |  $$$$/|  $$$$$$$
// \_______/ \______/ |__/  |__/|__/      |__/|__/      |__/ |__/ |__/ \_______/   \___/   \_______/
//
// This file is part of Confirmate Posture.

package util

import (
	"testing"

	"confirmate.io/posture/util/assert"
)

type myStruct struct {
	Test string
}

func TestDeref(t *testing.T) {
	var testValue string
	assert.Equal(t, testValue, Deref(&testValue))

	testValue = "testString"
	assert.Equal(t, testValue, Deref(&testValue))

	var testInt int = 12
	assert.Equal(t, testInt, Deref(&testInt))

	testStruct := myStruct{Test: "test"}
	assert.Equal(t, testStruct, Deref(&testStruct))

	var nilInt *int
	assert.Equal(t, 0, Deref(nilInt))
}

func TestRef(t *testing.T) {
	testValue := "testString"
	assert.Equal(t, &testValue, Ref(testValue))

	testStruct := myStruct{Test: "test"}
	assert.Equal(t, &testStruct, Ref(testStruct))

	// Modifying the reference must not change the original value
	p := Ref(testValue)
	*p = "changed"
	assert.Equal(t, "testString", testValue)
}

func TestIsNil(t *testing.T) {
	var (
		nilStruct *myStruct
		nilSlice  []string
		nilMap    map[string]int
	)

	tests := []struct {
		name  string
		value any
		want  bool
	}{
		{name: "untyped nil", value: nil, want: true},
		{name: "nil pointer", value: nilStruct, want: true},
		{name: "nil slice", value: nilSlice, want: true},
		{name: "nil map", value: nilMap, want: true},
		{name: "pointer", value: &myStruct{}, want: false},
		{name: "struct", value: myStruct{}, want: false},
		{name: "string", value: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsNil(tt.value))
		})
	}
}
