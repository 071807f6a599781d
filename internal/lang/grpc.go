package lang

import (
	"fmt"

	"github.com/malonaz/proto-rules/internal/graph"
)

// The gRPC definitions mirror the message-generation ones but additionally run
// the toolchain's gRPC plugin, so the primary output carries the service stubs
// alongside the messages.

// CCGRPCDefinition generates and compiles C++ messages plus gRPC stubs.
func CCGRPCDefinition() Definition {
	return Definition{
		BuildStep:          ccGRPCStep,
		AdditionalProvides: ProvideNames("cc_hdrs"),
	}
}

func ccGRPCStep(a StepArgs) (graph.Target, error) {
	gen, err := protocInvocation(a, "cc", "--cpp_out=. --grpc_out=.",
		[]string{".pb.cc", ".pb.h", ".grpc.pb.cc", ".grpc.pb.h"}, a.Toolchain.GRPCPlugin)
	if err != nil {
		return "", err
	}

	primary := a.Graph.Label(fmt.Sprintf("_%s#cc", a.Name))
	return library(a, "cc", "cc_library", gen, map[string]graph.Target{
		"cc_hdrs": graph.Target(string(primary) + "#cc_hdrs"),
	})
}

// GoGRPCDefinition generates and compiles Go messages plus gRPC stubs.
func GoGRPCDefinition() Definition {
	return Definition{
		BuildStep: goGRPCStep,
		AdditionalProvides: ProvideTargets(map[string]string{
			"go_src": "_{name}#protoc_go",
		}),
	}
}

func goGRPCStep(a StepArgs) (graph.Target, error) {
	gen, err := protocInvocation(a, "go", "--go_out=. --go-grpc_out=.",
		[]string{".pb.go", "_grpc.pb.go"}, a.Toolchain.GRPCPlugin)
	if err != nil {
		return "", err
	}

	return library(a, "go", "go_library", gen, nil)
}

// JavaGRPCDefinition generates and compiles Java messages plus gRPC stubs.
func JavaGRPCDefinition() Definition {
	return Definition{BuildStep: javaGRPCStep}
}

func javaGRPCStep(a StepArgs) (graph.Target, error) {
	gen, err := protocInvocation(a, "java", "--java_out=. --grpc-java_out=.",
		[]string{".java", "Grpc.java"}, a.Toolchain.GRPCPlugin)
	if err != nil {
		return "", err
	}

	return library(a, "java", "java_library", gen, nil)
}

// PythonGRPCDefinition generates Python messages plus gRPC stubs.
func PythonGRPCDefinition() Definition {
	return Definition{BuildStep: pythonGRPCStep}
}

func pythonGRPCStep(a StepArgs) (graph.Target, error) {
	gen, err := protocInvocation(a, "py", "--python_out=. --grpc_python_out=.",
		[]string{"_pb2.py", "_pb2_grpc.py"}, a.Toolchain.GRPCPlugin)
	if err != nil {
		return "", err
	}

	return library(a, "py", "py_library", gen, nil)
}
