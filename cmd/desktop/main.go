package main

import (
	"flag"
	"fmt"
	"image/color"
	"log"
	"os"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"golang.org/x/image/font/basicfont"

	"asuacc/pkg/asm"
	"asuacc/pkg/compiler"
	"asuacc/pkg/cpu"
	"asuacc/pkg/grid"
	"asuacc/pkg/utils"
)

const (
	screenWidth  = 640
	screenHeight = 480

	lineHeight   = 14
	listingRows  = 30
	listingX     = 8
	panelX       = 360
	cellColumns  = 2
	cellWidth    = 130
	stepsPerTick = 500
)

var (
	face         = text.NewGoXFace(basicfont.Face7x13)
	colorText    = color.RGBA{0xdd, 0xdd, 0xdd, 0xff}
	colorCurrent = color.RGBA{0xff, 0xd7, 0x00, 0xff}
	colorError   = color.RGBA{0xff, 0x55, 0x55, 0xff}
)

// Game steps an assembled listing one instruction at a time.
//
// Space steps, R toggles free running, Backspace resets.
type Game struct {
	vm        *cpu.CPU
	code      []string
	sourceMap map[int]int // instruction index -> 1-based listing line
	vars      map[string]int16
	running   bool
	err       error
}

func newGame(listing *compiler.Listing, vars map[string]int16) (*Game, error) {
	prog, sourceMap, err := asm.Assemble(listing.String())
	if err != nil {
		return nil, err
	}
	g := &Game{
		vm:        cpu.NewCPU(prog),
		code:      listing.Code,
		sourceMap: sourceMap,
		vars:      vars,
	}
	g.reset()
	return g, nil
}

func (g *Game) reset() {
	g.vm.Reset()
	for name, v := range g.vars {
		g.vm.Set(name, v)
	}
	g.running = false
	g.err = nil
}

func (g *Game) step() {
	if g.vm.Halted || g.err != nil {
		g.running = false
		return
	}
	if err := g.vm.Step(); err != nil {
		g.err = err
		g.running = false
	}
}

func (g *Game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		g.step()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		g.running = !g.running
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyBackspace) {
		g.reset()
	}

	if g.running {
		for i := 0; i < stepsPerTick && g.running; i++ {
			g.step()
		}
	}
	return nil
}

// currentLine is the 0-based listing line of the next instruction, or -1
// once the machine has halted.
func (g *Game) currentLine() int {
	if g.vm.Halted {
		return -1
	}
	line, ok := g.sourceMap[g.vm.PC]
	if !ok {
		return -1
	}
	return line - 1
}

// listingWindow returns the first line to show so that current stays on
// screen, scrolling in pages of rows.
func listingWindow(total, current, rows int) int {
	if current < 0 || total <= rows {
		return 0
	}
	start := (current / rows) * rows
	if start+rows > total {
		start = total - rows
	}
	return start
}

// cellLines formats the memory cells for the side panel, sorted by name.
func cellLines(vm *cpu.CPU) []string {
	names := vm.Cells()
	lines := make([]string, len(names))
	for i, name := range names {
		v, _ := vm.Get(name)
		lines[i] = fmt.Sprintf("%-8s %6d", name, v)
	}
	return lines
}

func drawText(screen *ebiten.Image, s string, x, y int, clr color.Color) {
	op := &text.DrawOptions{}
	op.GeoM.Translate(float64(x), float64(y))
	op.ColorScale.ScaleWithColor(clr)
	text.Draw(screen, s, face, op)
}

func (g *Game) Draw(screen *ebiten.Image) {
	current := g.currentLine()
	start := listingWindow(len(g.code), current, listingRows)
	for row := 0; row < listingRows && start+row < len(g.code); row++ {
		i := start + row
		clr := colorText
		prefix := "  "
		if i == current {
			clr = colorCurrent
			prefix = "> "
		}
		drawText(screen, fmt.Sprintf("%s%3d  %s", prefix, i+1, g.code[i]), listingX, 8+row*lineHeight, clr)
	}

	regs := []string{
		fmt.Sprintf("A   %6d", g.vm.Regs[cpu.RegA]),
		fmt.Sprintf("B   %6d", g.vm.Regs[cpu.RegB]),
		fmt.Sprintf("CMP %6d", g.vm.Cmp),
		fmt.Sprintf("PC  %6d", g.vm.PC),
		fmt.Sprintf("steps=%d reads=%d writes=%d", g.vm.Steps, g.vm.Reads, g.vm.Writes),
	}
	for i, s := range regs {
		drawText(screen, s, panelX, 8+i*lineHeight, colorText)
	}

	top := 8 + (len(regs)+1)*lineHeight
	for i, s := range cellLines(g.vm) {
		x, y := grid.GetGridCoords(i, cellColumns)
		drawText(screen, s, panelX+x*cellWidth, top+y*lineHeight, colorText)
	}

	switch {
	case g.err != nil:
		drawText(screen, g.err.Error(), listingX, screenHeight-36, colorError)
	case g.vm.Halted:
		result, _ := g.vm.Get(cpu.ResultCell)
		errFlag, _ := g.vm.Get(cpu.ErrorCell)
		drawText(screen, fmt.Sprintf("halted: result=%d error=%d", result, errFlag), listingX, screenHeight-36, colorCurrent)
	}
	ebitenutil.DebugPrintAt(screen, "SPACE step   R run/pause   BACKSPACE reset", listingX, screenHeight-18)
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return screenWidth, screenHeight
}

func main() {
	expr := flag.String("e", "", "statement to compile, e.g. \"result = a * b\"")
	set := flag.String("set", "", "initial variable values, e.g. a=6,b=7")
	zeroCell := flag.Bool("zero-cell", false, "read 0 from the zero cell instead of loading an immediate")
	flag.Parse()

	src := *expr
	if src == "" {
		if flag.NArg() == 0 {
			fmt.Fprintln(os.Stderr, "usage: desktop [-set a=1,b=2] (-e statement | file)")
			os.Exit(2)
		}
		fullPath, _, err := utils.GetPathInfo(flag.Arg(0))
		if err != nil {
			log.Fatalf("Failed to resolve path: %v", err)
		}
		data, err := os.ReadFile(fullPath)
		if err != nil {
			log.Fatalf("Failed to read source file: %v", err)
		}
		src = strings.TrimSpace(string(data))
	}

	vars, err := utils.ParseBindings(*set)
	if err != nil {
		log.Fatalf("Invalid -set: %v", err)
	}

	opts := compiler.DefaultOptions()
	opts.ImmediateZero = !*zeroCell
	listing, err := compiler.Compile(src, opts)
	if err != nil {
		log.Fatalf("Compilation failed: %v", err)
	}

	game, err := newGame(listing, vars)
	if err != nil {
		log.Fatalf("Assembly failed: %v", err)
	}

	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(screenWidth, screenHeight)
	ebiten.SetWindowTitle("ASUA Debugger - " + src)

	if err := ebiten.RunGame(game); err != nil {
		log.Fatal(err)
	}
}
