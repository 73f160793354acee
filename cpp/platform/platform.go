// Copyright 2026 EngFlow Inc. All rights reserved.
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

// Package platform describes target OS/architecture pairs and the macros a
// compiler predefines for each of them (_WIN32, __linux__, __aarch64__, ...).
//
// OS and Arch values match the constraint value names of '@platforms//os' and
// '@platforms//cpu'.
package platform

import (
	"cmp"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/EngFlow/ccpp/cpp/macro"
)

// Platform is an OS/Arch pair. Either part may be empty, meaning the macros
// of the other part alone.
type Platform struct {
	OS   OS
	Arch Arch
}

func (p Platform) String() string {
	return fmt.Sprintf("%s/%s", p.OS, p.Arch)
}

// Compare orders by OS first, then by Arch.
func Compare(a, b Platform) int {
	if d := cmp.Compare(a.OS, b.OS); d != 0 {
		return d
	}
	return cmp.Compare(a.Arch, b.Arch)
}

// https://github.com/bazelbuild/platforms/blob/1.0.0/os/BUILD
type OS string

const (
	Android    OS = "android"
	ChromiumOS OS = "chromiumos"
	Emscripten OS = "emscripten"
	FreeBSD    OS = "freebsd"
	Fuchsia    OS = "fuchsia"
	Haiku      OS = "haiku"
	IOS        OS = "ios"
	Linux      OS = "linux"
	NetBSD     OS = "netbsd"
	NixOS      OS = "nixos"
	None       OS = "none" // bare-metal
	OpenBSD    OS = "openbsd"
	OSX        OS = "osx"
	QNX        OS = "qnx"
	TvOS       OS = "tvos"
	UEFI       OS = "uefi"
	VisionOS   OS = "visionos"
	VxWorks    OS = "vxworks"
	WASI       OS = "wasi"
	WatchOS    OS = "watchos"
	Windows    OS = "windows"
)

var osAlias = map[string]OS{
	"macos":  OSX,
	"darwin": OSX,
	"win32":  Windows,
}

var allKnownOS = []OS{
	Android, ChromiumOS, Emscripten, FreeBSD, Fuchsia, Haiku, IOS,
	Linux, NetBSD, NixOS, None, OpenBSD, OSX, QNX, TvOS,
	UEFI, VisionOS, VxWorks, WASI, WatchOS, Windows,
}

// https://github.com/bazelbuild/platforms/blob/1.0.0/cpu/BUILD
type Arch string

const (
	Aarch32   Arch = "aarch32"
	Aarch64   Arch = "aarch64"
	Arm64_32  Arch = "arm64_32"
	Arm64e    Arch = "arm64e"
	Armv6m    Arch = "armv6-m"
	Armv7     Arch = "armv7"
	Armv7em   Arch = "armv7e-m"
	Armv7emf  Arch = "armv7e-mf"
	Armv7k    Arch = "armv7k"
	Armv7m    Arch = "armv7-m"
	Armv8m    Arch = "armv8-m"
	CortexR52 Arch = "cortex-r52"
	CortexR82 Arch = "cortex-r82"
	I386      Arch = "i386"
	Mips64    Arch = "mips64"
	PPC       Arch = "ppc"
	PPC32     Arch = "ppc32"
	PPC64le   Arch = "ppc64le"
	RiscV32   Arch = "riscv32"
	RiscV64   Arch = "riscv64"
	S390x     Arch = "s390x"
	Wasm32    Arch = "wasm32"
	Wasm64    Arch = "wasm64"
	X86_32    Arch = "x86_32"
	X86_64    Arch = "x86_64"
)

var archAlias = map[string]Arch{
	"arm":   Aarch32,
	"arm64": Aarch64,
	"amd64": X86_64,
	"386":   I386,
}

var allKnownArch = []Arch{
	Aarch32, Aarch64, Arm64_32, Arm64e, Armv6m, Armv7, Armv7em, Armv7emf,
	Armv7k, Armv7m, Armv8m, CortexR52, CortexR82, I386, Mips64, PPC,
	PPC32, PPC64le, RiscV32, RiscV64, S390x, Wasm32, Wasm64, X86_32, X86_64,
}

var arch64 = []Arch{Aarch64, Arm64e, Mips64, PPC64le, RiscV64, S390x, Wasm64, X86_64}

// Parse reads "os/arch", "os" or "/arch". Aliases such as macos or amd64 are
// accepted and normalized.
func Parse(s string) (Platform, error) {
	osName, archName, _ := strings.Cut(strings.TrimSpace(s), "/")
	if osName == "" && archName == "" {
		return Platform{}, fmt.Errorf("empty platform %q", s)
	}
	p := Platform{
		OS:   dealias(OS(strings.ToLower(osName)), osAlias),
		Arch: dealias(Arch(strings.ToLower(archName)), archAlias),
	}
	if p.OS != "" && !slices.Contains(allKnownOS, p.OS) {
		return p, fmt.Errorf("unknown OS %v, expected one of known values %v or an alias %v", p.OS, allKnownOS, slices.Sorted(maps.Keys(osAlias)))
	}
	if p.Arch != "" && !slices.Contains(allKnownArch, p.Arch) {
		return p, fmt.Errorf("unknown architecture %v, expected one of known values %v or an alias %v", p.Arch, allKnownArch, slices.Sorted(maps.Keys(archAlias)))
	}
	return p, nil
}

func dealias[T ~string](value T, aliases map[string]T) T {
	if dealiased, exists := aliases[string(value)]; exists {
		return dealiased
	}
	return value
}

// Values returns the predefined macros of the platform with their replacement
// text.
func (p Platform) Values() map[string]string {
	values := map[string]string{}
	if p.OS != "" {
		maps.Copy(values, osMacros[p.OS])
	}
	if p.Arch != "" {
		maps.Copy(values, archMacros[p.Arch])
		if p.OS != "" {
			maps.Copy(values, dataModel(p))
		}
		if p.OS == Windows {
			for _, name := range windowsArch[p.Arch] {
				values[name] = "1"
			}
		}
	}
	return values
}

// Macros returns the predefined macros of the platform sorted by name.
func (p Platform) Macros() []*macro.Macro {
	values := p.Values()
	macros := make([]*macro.Macro, 0, len(values))
	for _, name := range slices.Sorted(maps.Keys(values)) {
		m, err := macro.ParseDefine(name + "=" + values[name])
		if err != nil {
			// all names and values are defined below
			panic(err)
		}
		macros = append(macros, m)
	}
	return macros
}

// Define installs the predefined macros of the platform into t.
func (p Platform) Define(t *macro.Table) {
	for _, m := range p.Macros() {
		t.Define(m)
	}
}

func dataModel(p Platform) map[string]string {
	pointerSize := 4
	if slices.Contains(arch64, p.Arch) {
		pointerSize = 8
	}
	values := map[string]string{
		"__CHAR_BIT__":       "8",
		"__SIZEOF_INT__":     "4",
		"__SIZEOF_POINTER__": strconv.Itoa(pointerSize),
		"__SIZEOF_LONG__":    strconv.Itoa(pointerSize),
	}
	// Windows is LLP64, everybody else is LP64 on 64-bit targets
	if p.OS == Windows {
		values["__SIZEOF_LONG__"] = "4"
	} else if pointerSize == 8 {
		values["__LP64__"] = "1"
		values["_LP64"] = "1"
	}
	return values
}

// Architecture macros of MSVC and MinGW.
var windowsArch = map[Arch][]string{
	I386:    {"_M_IX86", "__MINGW32__"},
	X86_32:  {"_M_IX86", "__MINGW32__"},
	X86_64:  {"_M_X64", "_WIN64", "__MINGW32__", "__MINGW64__"},
	Aarch32: {"_M_ARM"},
	Aarch64: {"_M_ARM64", "_WIN64"},
}

var (
	osMacros   = map[OS]map[string]string{}
	archMacros = map[Arch]map[string]string{}
)

func defineForOS(names []string, systems ...OS) {
	for _, os := range systems {
		if osMacros[os] == nil {
			osMacros[os] = map[string]string{}
		}
		for _, name := range names {
			osMacros[os][name] = "1"
		}
	}
}

func defineForArch(names []string, archs ...Arch) {
	for _, arch := range archs {
		if archMacros[arch] == nil {
			archMacros[arch] = map[string]string{}
		}
		for _, name := range names {
			archMacros[arch][name] = "1"
		}
	}
}

func names(n ...string) []string { return n }

func init() {
	// Windows
	defineForOS(names("_WIN32"), Windows)

	// Linux and derivatives
	defineForOS(names("linux", "__linux__", "__linux", "__gnu_linux__"), Linux, Android, ChromiumOS, NixOS)
	defineForOS(names("__NIX__", "__NIXOS__"), NixOS)
	defineForOS(names("__ANDROID__"), Android)
	defineForOS(names("__CHROMEOS__"), ChromiumOS)
	// Apple systems are not "unix" for the compiler
	defineForOS(names("unix", "__unix", "__unix__"), Linux, Android, ChromiumOS, NixOS, FreeBSD, NetBSD, OpenBSD, Haiku, QNX)

	// WebAssembly
	defineForOS(names("__EMSCRIPTEN__"), Emscripten)
	defineForOS(names("__wasi__"), WASI)

	// BSD
	defineForOS(names("__FreeBSD__"), FreeBSD)
	defineForOS(names("__NetBSD__"), NetBSD)
	defineForOS(names("__OpenBSD__"), OpenBSD)

	defineForOS(names("__QNX__", "__QNXNTO__"), QNX)
	defineForOS(names("__HAIKU__"), Haiku)
	defineForOS(names("__FUCHSIA__", "__Fuchsia__"), Fuchsia)
	defineForOS(names("__VXWORKS__", "__vxworks"), VxWorks)
	defineForOS(names("__UEFI__", "__EFI__"), UEFI)

	// Apple
	defineForOS(names("__APPLE__", "__MACH__"), OSX, IOS, TvOS, WatchOS, VisionOS)
	defineForOS(names("TARGET_OS_OSX", "TARGET_OS_MAC"), OSX)
	defineForOS(names("TARGET_OS_IPHONE", "TARGET_OS_IOS"), IOS)
	defineForOS(names("TARGET_OS_TV"), TvOS)
	defineForOS(names("TARGET_OS_WATCH"), WatchOS)
	defineForOS(names("TARGET_OS_VISION"), VisionOS)

	defineForArch(names("__x86_64__", "__x86_64", "__amd64", "__amd64__"), X86_64)
	defineForArch(names("__i386__", "__i386"), I386, X86_32)
	defineForArch(names("__arm__", "__arm", "__thumb__", "__thumb"), Aarch32)
	defineForArch(names("__aarch64__", "__arm64", "__arm64__"), Aarch64, Arm64e)
	defineForArch(names("__ARM64_32__", "__ARM64_32"), Arm64_32)
	defineForArch(names("__arm64e__", "__arm64e"), Arm64e)
	defineForArch(names("__ARM_ARCH_6M__"), Armv6m)
	defineForArch(names("__ARM_ARCH_7__", "__ARM_ARCH_7A__"), Armv7)
	defineForArch(names("__ARM_ARCH_7M__"), Armv7m)
	defineForArch(names("__ARM_ARCH_7EM__"), Armv7em, Armv7emf)
	defineForArch(names("__ARM_ARCH_8M_BASE__", "__ARM_ARCH_8M_MAIN__"), Armv8m)
	defineForArch(names("__powerpc__", "__PPC__"), PPC, PPC32, PPC64le)
	defineForArch(names("__powerpc64__", "__ppc64__"), PPC64le)
	defineForArch(names("__mips64"), Mips64)
	defineForArch(names("__s390x__", "__s390__"), S390x)
	defineForArch(names("__riscv"), RiscV32, RiscV64)
	defineForArch(names("__wasm__"), Wasm32, Wasm64)
	defineForArch(names("__wasm32__"), Wasm32)
	defineForArch(names("__wasm64__"), Wasm64)
}
