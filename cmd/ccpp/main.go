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

package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/EngFlow/ccpp/cpp"
	"github.com/EngFlow/ccpp/cpp/config"
	"github.com/EngFlow/ccpp/cpp/include"
	"github.com/EngFlow/ccpp/cpp/tokenio"
)

// Preprocesses a single C/C++ source file and writes the resulting token stream.
// Configuration is layered: CCPP_* environment variables, then the cc_* rule of
// a BUILD file (-build-file), then command line flags.
func main() {
	var flags cliFlags
	flags.register(flag.CommandLine)
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		log.Fatalf("Program requires exactly 1 argument - the path to the source file. Flags needs to be defined before arguments")
	}
	if err := run(flags, flag.Arg(0), os.Stdout); err != nil {
		log.Fatal(err)
	}
}

type listFlag []string

func (l *listFlag) String() string { return strings.Join(*l, ",") }

func (l *listFlag) Set(value string) error {
	*l = append(*l, value)
	return nil
}

type cliFlags struct {
	includePaths      listFlag
	quoteIncludePaths listFlag
	frameworkPaths    listFlag
	defines           listFlag
	undefines         listFlag
	platform          string
	buildFile         string
	pkg               string
	ruleName          string
	root              string
	sysroot           string
	sysrootDirs       listFlag
	exclude           listFlag
	format            string
	output            string
	verbose           bool
	dumpMacros        bool
	listHeaders       bool
}

func (f *cliFlags) register(fs *flag.FlagSet) {
	fs.Var(&f.includePaths, "I", "Add directory to the include search path (repeated, doublestar patterns allowed)")
	fs.Var(&f.quoteIncludePaths, "iquote", "Add directory to the search path of quoted includes (repeated)")
	fs.Var(&f.frameworkPaths, "F", "Add directory to the framework search path (repeated)")
	fs.Var(&f.defines, "D", "Define a macro: NAME, NAME=VALUE or NAME(PARAMS)=BODY (repeated)")
	fs.Var(&f.undefines, "U", "Undefine a macro (repeated)")
	fs.StringVar(&f.platform, "platform", "", "Target platform as os/arch, e.g. linux/x86_64")
	fs.StringVar(&f.buildFile, "build-file", "", "BUILD file to read defines and include paths from")
	fs.StringVar(&f.pkg, "package", "", "Repo-root-relative package of the BUILD file")
	fs.StringVar(&f.ruleName, "rule", "", "Name of the cc_* rule in the BUILD file, the first one if empty")
	fs.StringVar(&f.root, "root", ".", "Repository root, used for include_prefix and strip_include_prefix")
	fs.StringVar(&f.sysroot, "sysroot", "", "A .tar.xz archive of system headers")
	fs.Var(&f.sysrootDirs, "sysroot-dir", "Search directory inside the sysroot archive (repeated, default /usr/include)")
	fs.Var(&f.exclude, "exclude", "Pattern of include paths that should never be resolved (repeated)")
	fs.StringVar(&f.format, "format", "text", "Output format: text, tokens or proto")
	fs.StringVar(&f.output, "o", "", "Output file, standard output if empty")
	fs.BoolVar(&f.verbose, "v", false, "Log every diagnostic as it is found")
	fs.BoolVar(&f.dumpMacros, "dump-macros", false, "Print the macros defined at the end of the file instead of the tokens")
	fs.BoolVar(&f.listHeaders, "M", false, "Print the headers included by the file instead of the tokens")
}

func (f *cliFlags) config() config.Config {
	return config.Config{
		IncludePaths:      f.includePaths,
		QuoteIncludePaths: f.quoteIncludePaths,
		FrameworkPaths:    f.frameworkPaths,
		Defines:           f.defines,
		Undefines:         f.undefines,
		Platform:          f.platform,
		Debug:             f.verbose,
	}
}

func run(flags cliFlags, source string, stdout io.Writer) error {
	cfg := config.FromEnv()
	if flags.buildFile != "" {
		fromBuild, err := config.LoadBuildFile(flags.buildFile, flags.pkg, flags.ruleName)
		if err != nil {
			return err
		}
		cfg = cfg.Merge(fromBuild)
	}
	cfg = cfg.Merge(flags.config())

	options, err := cfg.Options(flags.root)
	if err != nil {
		return err
	}
	options.Resolver, err = buildResolver(flags, cfg, options.Resolver)
	if err != nil {
		return err
	}

	p, err := cpp.New(options)
	if err != nil {
		include.Close(options.Resolver)
		return err
	}
	defer p.Close()
	stream, err := p.Preprocess(source)
	if err != nil {
		return err
	}
	if !cfg.Debug {
		for _, d := range p.Diagnostics() {
			log.Print(d)
		}
	}

	out := stdout
	if flags.output != "" {
		file, err := os.Create(flags.output)
		if err != nil {
			return err
		}
		defer file.Close()
		out = file
	}

	if flags.dumpMacros {
		macros := p.Macros()
		for _, name := range macros.Names() {
			m, _ := macros.Lookup(name)
			if !m.Builtin {
				fmt.Fprintln(out, m.Definition())
			}
		}
		return nil
	}

	if flags.listHeaders {
		for _, header := range p.Headers() {
			fmt.Fprintln(out, header)
		}
		return nil
	}

	switch flags.format {
	case "text":
		return tokenio.WriteText(out, source, stream.Tokens())
	case "tokens":
		return tokenio.WriteTokens(out, stream.Tokens())
	case "proto":
		_, err := out.Write(tokenio.MarshalBinary(stream.Tokens()))
		return err
	default:
		return fmt.Errorf("unknown output format %q, expected one of text, tokens or proto", flags.format)
	}
}

// buildResolver adds the sysroot archive and the exclusions to the resolver
// derived from the configuration.
func buildResolver(flags cliFlags, cfg config.Config, base include.Resolver) (include.Resolver, error) {
	if base == nil {
		fs, err := include.NewFileSystem(cfg.QuoteIncludePaths, cfg.IncludePaths, cfg.FrameworkPaths)
		if err != nil {
			return nil, err
		}
		base = fs
	}

	resolver := base
	if flags.sysroot != "" {
		archive, err := os.Open(flags.sysroot)
		if err != nil {
			return nil, err
		}
		defer archive.Close()
		dirs := []string(flags.sysrootDirs)
		if len(dirs) == 0 {
			dirs = []string{"/usr/include"}
		}
		sysroot, err := include.LoadArchive(archive, dirs...)
		if err != nil {
			return nil, fmt.Errorf("loading sysroot %s: %w", flags.sysroot, err)
		}
		resolver = include.Chain{resolver, sysroot}
	}
	if len(flags.exclude) > 0 {
		filter, err := include.NewFilter(resolver, flags.exclude...)
		if err != nil {
			return nil, err
		}
		resolver = filter
	}
	return resolver, nil
}
