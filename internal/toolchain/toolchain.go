// Package toolchain describes where the protobuf compiler and its well-known
// shared definitions come from: external filesystem paths, or nodes inside the
// build graph itself.
package toolchain

import (
	"fmt"
	"sort"
	"strings"

	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/reflect/protoregistry"

	"github.com/malonaz/proto-rules/internal/graph"

	// Register the well-known definition files so WellKnownImports can
	// enumerate them from the global registry.
	_ "google.golang.org/protobuf/types/descriptorpb"
	_ "google.golang.org/protobuf/types/known/anypb"
	_ "google.golang.org/protobuf/types/known/durationpb"
	_ "google.golang.org/protobuf/types/known/emptypb"
	_ "google.golang.org/protobuf/types/known/fieldmaskpb"
	_ "google.golang.org/protobuf/types/known/structpb"
	_ "google.golang.org/protobuf/types/known/timestamppb"
	_ "google.golang.org/protobuf/types/known/wrapperspb"
)

// Toolchain identifies the compiler and its companions. Each reference is
// either a filesystem path/executable name or a graph-internal target label.
type Toolchain struct {
	// Protoc is the protobuf compiler.
	Protoc string

	// GRPCPlugin is the gRPC stub generator plugin.
	GRPCPlugin string

	// WellKnownDefs is the target re-exporting the compiler's bundled
	// definition files (google/protobuf/*.proto). Required when Protoc is
	// graph-internal, since generated code must be able to resolve standard
	// imports without the system include path.
	WellKnownDefs string
}

// Default returns a toolchain using executables from PATH.
func Default() Toolchain {
	return Toolchain{
		Protoc:     "protoc",
		GRPCPlugin: "protoc-gen-grpc",
	}
}

// IsGraphInternal reports whether a toolchain reference names a build-graph
// target rather than a filesystem path.
func IsGraphInternal(ref string) bool {
	return strings.HasPrefix(ref, "//") || strings.HasPrefix(ref, ":")
}

// Validate checks the toolchain configuration. A graph-internal compiler with
// no shared-definitions target is rejected here rather than surfacing later as
// unresolvable imports in every language's generated code.
func (t Toolchain) Validate() error {
	if t.Protoc == "" {
		return fmt.Errorf("toolchain has no compiler configured")
	}
	if IsGraphInternal(t.Protoc) && t.WellKnownDefs == "" {
		return fmt.Errorf("graph-internal compiler %s exposes no well-known definitions target", t.Protoc)
	}
	if t.WellKnownDefs != "" && !IsGraphInternal(t.WellKnownDefs) {
		return fmt.Errorf("well-known definitions reference %q must be a graph-internal target", t.WellKnownDefs)
	}
	return nil
}

// DownloadSpec describes a compiler release archive to fetch instead of using
// a system executable.
type DownloadSpec struct {
	URL  string
	Hash string
}

// WithDownload emits the nodes that acquire the compiler from a release
// archive: a download/extract node for the binary plus a filegroup
// re-exporting the bundled well-known definitions. It returns a toolchain
// whose references point at those nodes.
func (t Toolchain) WithDownload(g *graph.Graph, spec DownloadSpec) (Toolchain, error) {
	download, err := g.RemoteArchive(graph.RemoteArchiveSpec{
		Name: "_protoc#download",
		URL:  spec.URL,
		Hash: spec.Hash,
		Outs: []string{"bin/protoc", "include"},
	})
	if err != nil {
		return Toolchain{}, fmt.Errorf("failed to add compiler download node: %w", err)
	}

	var wellKnown []string
	for _, path := range WellKnownImports() {
		wellKnown = append(wellKnown, "include/"+path)
	}

	defs, err := g.Filegroup(graph.FilegroupSpec{
		Name:         "_protoc#wkt",
		Srcs:         wellKnown,
		Deps:         []graph.Target{download},
		Intermediate: true,
	})
	if err != nil {
		return Toolchain{}, fmt.Errorf("failed to add well-known definitions node: %w", err)
	}

	return Toolchain{
		Protoc:        string(download),
		GRPCPlugin:    t.GRPCPlugin,
		WellKnownDefs: string(defs),
	}, nil
}

// WellKnownImports returns the import paths of the definition files bundled
// with the compiler, enumerated from the registered descriptors.
func WellKnownImports() []string {
	var paths []string
	protoregistry.GlobalFiles.RangeFiles(func(fd protoreflect.FileDescriptor) bool {
		if path := fd.Path(); strings.HasPrefix(path, "google/protobuf/") {
			paths = append(paths, path)
		}
		return true
	})
	sort.Strings(paths)
	return paths
}
