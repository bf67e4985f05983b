package main

import (
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rusocsci/bitsigo/bitsi"
	log "github.com/sirupsen/logrus"
)

var port = flag.String("p", "", "serial port name, overrides -i")
var index = flag.Int("i", 0, "index in the list of attached USB serial devices, 0 is the most recent")
var devType = flag.String("t", "buttonbox", "device type: buttonbox, extended or joystick")
var listen = flag.String("s", "localhost:8432", "http listen address")
var verbose = flag.Bool("v", false, "verbose logging")

// To be set via go build -ldflags "-X main.buildVersion=$(git describe --dirty) -X main.buildDate=$(date -u +%FT%TZ)"
var buildVersion string = "unspecified"
var buildDate string = "unknown"

func main() {
	flag.Parse()

	if *verbose == true {
		log.SetLevel(log.DebugLevel)
		log.SetFormatter(&log.TextFormatter{
			FullTimestamp: true,
		})
	}

	opts := []bitsi.Option{bitsi.WithIndex(*index)}
	if *port != "" {
		opts = append(opts, bitsi.WithPort(*port))
	}

	dev, err := connectDevice(*devType, opts)
	if err != nil {
		log.Fatalf("Could not connect %v: %v", *devType, err)
	}
	log.Infof("Connected: %v (%v)", dev.Identity(), dev.Kind())

	done := make(chan os.Signal, 1)
	signal.Notify(done,
		syscall.SIGHUP,
		syscall.SIGINT,
		syscall.SIGTERM,
		syscall.SIGQUIT)

	go func() {
		<-done
		dev.Close()
		os.Exit(0)
	}()

	r := newRouter(dev)
	log.Infof("Serving on http://%v", *listen)
	log.Fatal(http.ListenAndServe(*listen, r))
}

func connectDevice(kind string, opts []bitsi.Option) (device, error) {
	switch kind {
	case "buttonbox":
		bb, err := bitsi.NewButtonbox(opts...)
		if bb == nil {
			return nil, err
		}
		logHandshake(err)
		return &buttonboxDevice{bb}, nil
	case "extended":
		ex, err := bitsi.NewExtended(opts...)
		if ex == nil {
			return nil, err
		}
		logHandshake(err)
		return &extendedDevice{buttonboxDevice{&ex.Buttonbox}, ex}, nil
	case "joystick":
		joy, err := bitsi.NewJoystick(opts...)
		if joy == nil {
			return nil, err
		}
		logHandshake(err)
		return &joystickDevice{joy}, nil
	}
	return nil, errUnknownType
}

func logHandshake(err error) {
	if err != nil {
		log.Warnf("Device connected but did not complete the handshake: %v", err)
	}
}
