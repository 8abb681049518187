package main

import (
	"time"

	"github.com/rs/zerolog"
)

const defaultTestTimeout = 5 * time.Second

func testLogger() zerolog.Logger { return zerolog.Nop() }
