// Package gps feeds NMEA sentences from a receiver into a single
// nmea.Parser and publishes the resulting navigation state.
//
// Sources:
// - serial: USB/UART receiver (auto-detected when no device is given)
// - gpsd: raw NMEA relayed by gpsd's WATCH nmea mode
// - tcp: any NMEA-over-TCP feed (one sentence per line)
// - replay: a recorded sentence log
package gps
