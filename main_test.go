package main

import "testing"

func TestMainCallsExecute(t *testing.T) {
	called := false
	orig := execute
	execute = func() { called = true }
	t.Cleanup(func() { execute = orig })

	main()

	if !called {
		t.Fatalf("main did not invoke cmd.Execute")
	}
}
