package lang

import (
	"fmt"
	"strings"

	"github.com/malonaz/proto-rules/internal/graph"
)

// protocInvocation emits the compiler node for one language: it consumes the
// raw sources and produces the generated files.
func protocInvocation(a StepArgs, language, outFlag string, exts []string, plugin string) (graph.Target, error) {
	parts := []string{"protoc", outFlag}
	if a.Root != "" {
		parts = append(parts, "--proto_path="+a.Root)
	}
	if plugin != "" {
		parts = append(parts, "--plugin="+plugin)
	}
	parts = append(parts, a.ProtocFlags...)
	parts = append(parts, a.Srcs...)

	tools := []string{a.Toolchain.Protoc}
	if plugin != "" {
		tools = append(tools, plugin)
	}

	target, err := a.Graph.AddNode(graph.NodeSpec{
		Name:         fmt.Sprintf("_%s#protoc_%s", a.Name, language),
		Srcs:         a.Srcs,
		Outs:         generatedOuts(a.Srcs, exts),
		Cmd:          strings.Join(parts, " "),
		Tools:        tools,
		Deps:         append([]graph.Target{a.Proto}, a.Deps...),
		TestOnly:     a.TestOnly,
		Labels:       append(copyStrings(a.Labels), "codegen"),
		Intermediate: true,
	})
	if err != nil {
		return "", err
	}

	a.Logger.Debug().
		Str("language", language).
		Str("target", string(target)).
		Msg("composed compiler invocation")

	return target, nil
}

// library wraps the generated sources into the language's primary output node.
func library(a StepArgs, language, cmd string, gen graph.Target, provides map[string]graph.Target) (graph.Target, error) {
	return a.Graph.AddNode(graph.NodeSpec{
		Name:       fmt.Sprintf("_%s#%s", a.Name, language),
		Cmd:        cmd,
		Deps:       append([]graph.Target{gen}, a.Deps...),
		Visibility: a.Visibility,
		Labels:     copyStrings(a.Labels),
		TestOnly:   a.TestOnly,
		Provides:   provides,
	})
}

// generatedOuts derives the generated file names from the source names.
func generatedOuts(srcs, exts []string) []string {
	var outs []string
	for _, src := range srcs {
		base := strings.TrimSuffix(src, ".proto")
		for _, ext := range exts {
			outs = append(outs, base+ext)
		}
	}
	return outs
}

func copyStrings(s []string) []string {
	return append([]string(nil), s...)
}

// CCDefinition generates and compiles C++ messages. The generated headers are
// additionally exposed under the conventional "cc_hdrs" sub-target.
func CCDefinition() Definition {
	return Definition{
		BuildStep:          ccStep,
		AdditionalProvides: ProvideNames("cc_hdrs"),
	}
}

func ccStep(a StepArgs) (graph.Target, error) {
	gen, err := protocInvocation(a, "cc", "--cpp_out=.", []string{".pb.cc", ".pb.h"}, "")
	if err != nil {
		return "", err
	}

	primary := a.Graph.Label(fmt.Sprintf("_%s#cc", a.Name))
	return library(a, "cc", "cc_library", gen, map[string]graph.Target{
		"cc_hdrs": graph.Target(string(primary) + "#cc_hdrs"),
	})
}

// GoDefinition generates and compiles Go messages. The generated .pb.go
// sources are exposed under the "go_src" key, pointing directly at the
// compiler invocation node.
func GoDefinition() Definition {
	return Definition{
		BuildStep: goStep,
		AdditionalProvides: ProvideTargets(map[string]string{
			"go_src": "_{name}#protoc_go",
		}),
	}
}

func goStep(a StepArgs) (graph.Target, error) {
	gen, err := protocInvocation(a, "go", "--go_out=.", []string{".pb.go"}, "")
	if err != nil {
		return "", err
	}

	return library(a, "go", "go_library", gen, nil)
}

// JavaDefinition generates and compiles Java messages.
func JavaDefinition() Definition {
	return Definition{BuildStep: javaStep}
}

func javaStep(a StepArgs) (graph.Target, error) {
	gen, err := protocInvocation(a, "java", "--java_out=.", []string{".java"}, "")
	if err != nil {
		return "", err
	}

	return library(a, "java", "java_library", gen, nil)
}

// PythonDefinition generates Python messages. Python needs no compile step,
// so the primary output groups the generated sources directly.
func PythonDefinition() Definition {
	return Definition{BuildStep: pythonStep}
}

func pythonStep(a StepArgs) (graph.Target, error) {
	gen, err := protocInvocation(a, "py", "--python_out=.", []string{"_pb2.py"}, "")
	if err != nil {
		return "", err
	}

	return library(a, "py", "py_library", gen, nil)
}
