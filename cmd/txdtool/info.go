package main

import (
	"fmt"

	"github.com/davecgh/go-spew/spew"

	"github.com/imgfactory/txdtools/pkg/rw"
	"github.com/imgfactory/txdtools/pkg/txd"
)

var spewConfig = func() *spew.ConfigState {
	c := spew.NewDefaultConfig()
	c.DisableCapacities = true
	c.DisablePointerAddresses = true
	return c
}()

// textureView is a Texture without its pixel buffers, for dumping.
type textureView struct {
	txd.Texture
	DataLen   int
	PixelsLen int
}

func runInfo(args []string) error {
	fs, configPath := newFlagSet("info")
	verbose := fs.Bool("v", false, "Dump the parsed model")
	e, err := setup(fs, configPath, args, 1)
	if err != nil {
		return err
	}

	path := fs.Arg(0)
	d, err := e.readDictionary(path)
	if err != nil {
		return err
	}

	fmt.Printf("File: %s\n", path)
	fmt.Printf("Version: %s (0x%08x)\n", rw.VersionString(d.Version), d.Version)
	fmt.Printf("Textures: %d (%d not decoded)\n", len(d.Textures), len(d.Failed()))
	fmt.Println()

	for i := range d.Textures {
		t := &d.Textures[i]
		status := ""
		if !t.Decoded() {
			status = " [not decoded]"
		}
		alpha := ""
		if t.AlphaName != "" {
			alpha = " mask=" + t.AlphaName
		}
		fmt.Printf("%3d  %-31s %4dx%-4d %-9s mips=%d%s%s\n",
			i, t.Name, t.Width, t.Height, t.Format, t.MipmapCount, alpha, status)
	}

	if *verbose {
		for i := range d.Textures {
			v := textureView{Texture: d.Textures[i], DataLen: len(d.Textures[i].Data), PixelsLen: len(d.Textures[i].Pixels)}
			v.Data, v.Pixels = nil, nil
			fmt.Println(spewConfig.Sdump(v))
		}
	}

	return nil
}
