package caller

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type testStruct struct{}

func (testStruct) Method() string {
	return Name()
}

func (*testStruct) PointerMethod() string {
	return Name()
}

func bar() string {
	return Name()
}

func foo() string {
	return fooInner()
}

func fooInner() string {
	return Name(1)
}

func TestName(t *testing.T) {
	require.Equal(t, "bar", bar())
	require.Equal(t, "foo", foo())
	require.Equal(t, "testStruct.Method", testStruct{}.Method())
	require.Equal(t, "testStruct.PointerMethod", (&testStruct{}).PointerMethod())

	fn := func() string { return Name() }
	require.Equal(t, "TestName", fn())
}

func TestClean(t *testing.T) {
	cases := map[string]string{
		"github.com/tymbaca/mapreduce-engine/mapreduce.Start[...]":                   "Start",
		"github.com/tymbaca/mapreduce-engine/mapreduce.(*worker[...]).mapPhase":      "worker.mapPhase",
		"github.com/tymbaca/mapreduce-engine/mapreduce.(*worker[...]).shuffle.func1": "worker.shuffle",
		"main.main":                                                                  "main",
		"main.main.func2.1":                                                          "main",
	}

	for in, want := range cases {
		require.Equal(t, want, clean(in), in)
	}
}
