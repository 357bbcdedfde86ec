package toolchain

import (
	"os"
	"runtime"
	"strings"
)

// JoinPath joins class/source path elements with the platform separator.
func JoinPath(elems []string) string {
	return strings.Join(elems, string(os.PathListSeparator))
}

// Javac builds Java compiler invocations.
type Javac struct {
	Path string
}

// Compile returns a javac command compiling files into outDir.
func (j Javac) Compile(sourcepath, classpath []string, outDir string, files []string) Command {
	args := []string{
		"-sourcepath", JoinPath(sourcepath),
		"-classpath", JoinPath(classpath),
		"-d", outDir,
	}
	return Command{Name: j.Path, Args: append(args, files...)}
}

// Remapper builds invocations of the jar remapping tool.
type Remapper struct {
	Java      string
	Classpath []string
	MainClass string
}

func (r Remapper) command(args ...string) Command {
	base := []string{"-classpath", JoinPath(r.Classpath), r.MainClass}
	return Command{Name: r.Java, Args: append(base, args...)}
}

// BuildInheritance writes the inheritance table of infiles to inheritance.
func (r Remapper) BuildInheritance(inheritance, indir string, infiles ...string) Command {
	args := []string{"--inheritance", inheritance, "--indir", indir, "--infiles"}
	return r.command(append(args, infiles...)...)
}

// Invert translates infiles from the public names back to the internal ones
// (reobfuscation), writing results to outdir.
func (r Remapper) Invert(stored []string, mapping, indir, outdir string, infiles ...string) Command {
	args := append([]string{"--stored_inheritance"}, stored...)
	args = append(args, "--invert", "--config", mapping, "--outdir", outdir, "--indir", indir, "--infiles")
	return r.command(append(args, infiles...)...)
}

// Deobfuscate translates infiles from the internal names to the public ones.
func (r Remapper) Deobfuscate(stored []string, mapping, indir, outdir string, infiles ...string) Command {
	args := append([]string{"--stored_inheritance"}, stored...)
	args = append(args, "--config", mapping, "--indir", indir, "--outdir", outdir, "--infiles")
	return r.command(append(args, infiles...)...)
}

// Shell wraps a user-supplied command line for the platform shell.
func Shell(line, dir string, env ...string) Command {
	if runtime.GOOS == "windows" {
		return Command{Name: "cmd", Args: []string{"/C", line}, Dir: dir, Env: env}
	}
	return Command{Name: "sh", Args: []string{"-c", line}, Dir: dir, Env: env}
}
