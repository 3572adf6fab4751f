// Copyright 2025 KrakLabs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

package occurrence

import (
	"fmt"

	"github.com/kraklabs/cie/pkg/ir"
)

// descriptorSuffix reports the SCIP-style suffix character for a node
// kind: "()" for callables, "#" for type-like declarations, "." for
// everything else.
func descriptorSuffix(kind ir.NodeKind) string {
	switch kind {
	case ir.NodeKindFunction, ir.NodeKindMethod, ir.NodeKindArrowFunction:
		return "()"
	case ir.NodeKindClass, ir.NodeKindInterface, ir.NodeKindEnum:
		return "#"
	default:
		return "."
	}
}

// Build constructs a canonical descriptor string:
// "scheme-<lang> <package> <version> <root> <descriptor>". pkgName,
// version, and root describe the enclosing package; name is the
// symbol's simple or qualified name within it.
func Build(language, pkgName, version, root, name string, kind ir.NodeKind) ir.Descriptor {
	scheme := fmt.Sprintf("scheme-%s", language)
	descriptor := name + descriptorSuffix(kind)
	return ir.Descriptor(fmt.Sprintf("%s %s %s %s %s", scheme, pkgName, version, root, descriptor))
}

// BuildDefault fills in "" version and "." root, the common case for a
// single-snapshot local index with no versioned package registry.
func BuildDefault(language, pkgName, name string, kind ir.NodeKind) ir.Descriptor {
	return Build(language, pkgName, "", ".", name, kind)
}
