package gps

import "strings"

const gpsdDefaultAddr = "127.0.0.1:2947"

// gpsdWatchNMEA asks gpsd to relay the receiver's raw NMEA. gpsd still
// sends its own JSON reports (VERSION, DEVICES, WATCH) on the same stream;
// they do not start with '$' and Ingest drops them.
const gpsdWatchNMEA = "?WATCH={\"enable\":true,\"nmea\":true}\n"

func newGPSDSource(addr string) netSource {
	if strings.TrimSpace(addr) == "" {
		addr = gpsdDefaultAddr
	}
	return netSource{name: "gpsd", addr: addr, hello: []byte(gpsdWatchNMEA)}
}
