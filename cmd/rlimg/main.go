package main

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	_ "golang.org/x/image/bmp"

	rlimage "github.com/JoyBoy779/RLE-Linked-List-Image-Compressor"
)

const defaultThreshold = 128

const usage = `Usage:
  rlimg dump <input>                       print the compressed run table
  rlimg encode <input> <out.rli> [thresh]  compress to binary form (threshold 0-255)
  rlimg decode <in.rli> <out.png>          expand to a two-color PNG
  rlimg invert <input>                     invert and print the run table
  rlimg and|or|xor <a> <b>                 combine and print the run table

Inputs: .rli binary, .txt/.grid textual grid, or any png/jpeg/gif/bmp image.
`

func main() {
	if len(os.Args) < 3 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	var err error
	switch cmd := os.Args[1]; cmd {
	case "dump":
		err = runDump(os.Args[2])
	case "encode":
		err = runEncode(os.Args[2:])
	case "decode":
		err = runDecode(os.Args[2:])
	case "invert":
		err = runInvert(os.Args[2])
	case "and", "or", "xor":
		err = runCombine(cmd, os.Args[2:])
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "rlimg:", err)
		os.Exit(1)
	}
}

// loadImage reads any supported input into its compressed form, picking the
// reader by file extension.
func loadImage(path string) (*rlimage.Image, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".rli":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		return rlimage.UnmarshalBinary(data)
	case ".txt", ".grid":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		grid, w, h, err := rlimage.ParseGrid(string(data))
		if err != nil {
			return nil, err
		}
		return rlimage.FromGrid(grid, w, h)
	default:
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		src, _, err := image.Decode(f)
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", path, err)
		}
		return rlimage.FromImage(src, defaultThreshold), nil
	}
}

func runDump(path string) error {
	img, err := loadImage(path)
	if err != nil {
		return err
	}
	fmt.Println(img)
	return nil
}

func runEncode(args []string) error {
	if len(args) != 2 && len(args) != 3 {
		return fmt.Errorf("encode wants <input> <out.rli> [threshold]")
	}
	threshold := defaultThreshold
	if len(args) == 3 {
		t, err := strconv.Atoi(args[2])
		if err != nil || t < 0 || t > 255 {
			return fmt.Errorf("threshold must be an integer between 0 and 255")
		}
		threshold = t
	}

	var img *rlimage.Image
	if ext := strings.ToLower(filepath.Ext(args[0])); ext == ".rli" || ext == ".txt" || ext == ".grid" {
		var err error
		if img, err = loadImage(args[0]); err != nil {
			return err
		}
	} else {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()
		src, _, err := image.Decode(f)
		if err != nil {
			return fmt.Errorf("decode %s: %w", args[0], err)
		}
		img = rlimage.FromImage(src, uint8(threshold))
	}

	data, err := img.MarshalBinary()
	if err != nil {
		return err
	}
	if err := os.WriteFile(args[1], data, 0o644); err != nil {
		return err
	}
	fmt.Printf("Encoded %s (%dx%d) -> %s (%d bytes)\n",
		args[0], img.Width(), img.Height(), args[1], len(data))
	return nil
}

func runDecode(args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("decode wants <in.rli> <out.png>")
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	img, err := rlimage.UnmarshalBinary(data)
	if err != nil {
		return err
	}
	out, err := os.Create(args[1])
	if err != nil {
		return err
	}
	defer out.Close()
	if err := png.Encode(out, img.ToImage()); err != nil {
		return err
	}
	fmt.Printf("Decoded %s -> %s (%dx%d)\n", args[0], args[1], img.Width(), img.Height())
	return nil
}

func runInvert(path string) error {
	img, err := loadImage(path)
	if err != nil {
		return err
	}
	img.Invert()
	fmt.Println(img)
	return nil
}

func runCombine(op string, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("%s wants <a> <b>", op)
	}
	a, err := loadImage(args[0])
	if err != nil {
		return err
	}
	b, err := loadImage(args[1])
	if err != nil {
		return err
	}
	switch op {
	case "and":
		err = a.And(b)
	case "or":
		err = a.Or(b)
	case "xor":
		err = a.Xor(b)
	}
	if err != nil {
		return err
	}
	fmt.Println(a)
	return nil
}
