package webfault

import "testing"

func TestChainFingerprint_StableAcrossVariableData(t *testing.T) {
	base := ExceptionChain{{
		TypeName: "*fs.PathError",
		Message:  "open /etc/a.conf: no such file",
		Frames: []StackFrame{
			{Module: "example.com/app/cfg", Method: "Load", File: "cfg.go", Line: 10, NativeOffset: 0x20},
		},
	}}
	variant := ExceptionChain{{
		TypeName: "*fs.PathError",
		Message:  "open /etc/b.conf: no such file", // different message
		Frames: []StackFrame{
			{Module: "example.com/app/cfg", Method: "Load", File: "cfg.go", Line: 99, NativeOffset: 0x88},
		},
	}}

	if ChainFingerprint(base) != ChainFingerprint(variant) {
		t.Error("messages, line numbers, and offsets must not affect the fingerprint")
	}
}

func TestChainFingerprint_DistinguishesSites(t *testing.T) {
	a := ExceptionChain{{
		TypeName: "*errors.errorString",
		Frames:   []StackFrame{{Module: "example.com/app/orders", Method: "Place"}},
	}}
	b := ExceptionChain{{
		TypeName: "*errors.errorString",
		Frames:   []StackFrame{{Module: "example.com/app/billing", Method: "Charge"}},
	}}

	if ChainFingerprint(a) == ChainFingerprint(b) {
		t.Error("different failure sites must fingerprint differently")
	}
}

func TestChainFingerprint_UsesInnermostStack(t *testing.T) {
	outerOnly := ExceptionChain{
		{TypeName: "*fmt.wrapError", Frames: []StackFrame{{Module: "outer", Method: "A"}}},
		{TypeName: "*errors.errorString"},
	}
	innerStack := ExceptionChain{
		{TypeName: "*fmt.wrapError", Frames: []StackFrame{{Module: "outer", Method: "A"}}},
		{TypeName: "*errors.errorString", Frames: []StackFrame{{Module: "inner", Method: "B"}}},
	}

	if ChainFingerprint(outerOnly) == ChainFingerprint(innerStack) {
		t.Error("innermost captured stack must participate in the fingerprint")
	}
}

func TestChainFingerprint_Length(t *testing.T) {
	fp := ChainFingerprint(ExceptionChain{{TypeName: "x"}})
	if len(fp) != 32 {
		t.Errorf("fingerprint length = %d, want 32 hex chars", len(fp))
	}
}
