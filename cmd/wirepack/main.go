package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/wirepack/wirepack"
	"github.com/wirepack/wirepack/json"
	"github.com/wirepack/wirepack/msgpack"
	"github.com/wirepack/wirepack/value"
)

func main() {
	var (
		inFile      = flag.String("in", "", "Input file (default stdin)")
		outFile     = flag.String("out", "", "Output file (default stdout)")
		fromFormat  = flag.String("from", "msgpack", "Input format: msgpack or json")
		toFormat    = flag.String("to", "json", "Output format: msgpack or json")
		mode        = flag.String("mode", "named", "Presentation mode: compact or named")
		byteStrat   = flag.String("bytes", "array", "JSON byte strategy: array, hex or base64")
		strict      = flag.Bool("strict", false, "Reject unknown object keys on JSON decode")
		verbose     = flag.Bool("v", false, "Verbose diagnostics")
		interactive = flag.Bool("i", false, "Interactive inspector TUI")
	)
	flag.Parse()

	if !validFormat(*fromFormat) || !validFormat(*toFormat) {
		fmt.Fprintln(os.Stderr, "Usage: wirepack [-in file] [-out file] -from msgpack|json -to msgpack|json")
		fmt.Fprintln(os.Stderr, "       wirepack [-mode compact|named] [-bytes array|hex|base64] [-strict]")
		fmt.Fprintln(os.Stderr, "       wirepack -in file -from msgpack -i  (interactive inspector)")
		os.Exit(1)
	}

	if *interactive {
		if err := runInteractive(*inFile, *fromFormat, *strict); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(*inFile, *outFile, *fromFormat, *toFormat, *mode, *byteStrat, *strict, *verbose); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func validFormat(f string) bool {
	return f == "msgpack" || f == "json"
}

func run(inFile, outFile, from, to, mode, byteStrat string, strict, verbose bool) error {
	logger := zap.NewNop()
	if verbose {
		dev, err := zap.NewDevelopment()
		if err != nil {
			return fmt.Errorf("logger: %w", err)
		}
		logger = dev
		defer logger.Sync()
	}

	data, err := readInput(inFile)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	logger.Debug("read input",
		zap.String("file", displayName(inFile)),
		zap.Int("bytes", len(data)))

	v, err := decodeInput(data, from, strict)
	if err != nil {
		return fmt.Errorf("decode %s: %w", from, err)
	}
	logger.Debug("decoded value", zap.Stringer("kind", v.Kind()))

	out, err := encodeOutput(v, to, mode, byteStrat)
	if err != nil {
		return fmt.Errorf("encode %s: %w", to, err)
	}
	logger.Debug("encoded output",
		zap.String("format", to),
		zap.Int("bytes", len(out)))

	if err := writeOutput(outFile, out); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}

func displayName(file string) string {
	if file == "" {
		return "<stdin>"
	}
	return file
}

func readInput(file string) ([]byte, error) {
	if file == "" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(file)
}

func writeOutput(file string, data []byte) error {
	if file == "" {
		_, err := os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(file, data, 0o644)
}

func decodeInput(data []byte, from string, strict bool) (value.Value, error) {
	if from == "msgpack" {
		v, _, err := msgpack.Decode(data)
		return v, err
	}
	var opts []json.DecOption
	if strict {
		opts = append(opts, json.Strict())
	}
	return json.Decode(data, opts...)
}

func encodeOutput(v value.Value, to, mode, byteStrat string) ([]byte, error) {
	if to == "msgpack" {
		if mode == "compact" {
			return msgpack.AppendCompact(nil, v)
		}
		return msgpack.AppendNamed(nil, v)
	}

	var sink wirepack.BufferSink
	opts := []json.EncOption{json.Named()}
	if mode == "compact" {
		opts[0] = json.Compact()
	}
	switch byteStrat {
	case "hex":
		opts = append(opts, json.WithByteEncoding(json.ByteHex))
	case "base64":
		opts = append(opts, json.WithByteEncoding(json.ByteBase64))
	default:
		opts = append(opts, json.WithByteEncoding(json.ByteArray))
	}
	if err := json.NewEncoder(&sink, opts...).Encode(v); err != nil {
		return nil, err
	}
	return append(sink.Bytes(), '\n'), nil
}
