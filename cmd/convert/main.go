package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/relabs-tech/mocap_streamer/internal/app"
)

func main() {
	in := flag.String("in", "", "sensor log to convert")
	out := flag.String("out", "", "CSV file to write")
	inspect := flag.String("inspect", "", "CSV file to summarise instead of converting")
	flag.Parse()

	if *inspect != "" {
		if err := app.RunInspect(*inspect, os.Stdout); err != nil {
			log.Fatalf("fatal: %v", err)
		}
		return
	}

	if *in == "" || *out == "" {
		fmt.Fprintln(os.Stderr, "usage: convert -in sensors.log -out frames.csv | convert -inspect frames.csv")
		os.Exit(2)
	}
	if err := app.RunConvert(*in, *out); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
