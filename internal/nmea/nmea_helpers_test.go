package nmea

import "fmt"

// nmeaLine frames payload as a sentence with a correct checksum.
func nmeaLine(payload string) string {
	ck := byte(0)
	for i := 0; i < len(payload); i++ {
		ck ^= payload[i]
	}
	return fmt.Sprintf("$%s*%02X", payload, ck)
}

const (
	rmcPayload = "GPRMC,123519,A,4807.038,N,01131.000,E,022.4,084.4,230394,003.1,W"
	ggaPayload = "GPGGA,123519,4807.038,N,01131.000,E,1,08,0.9,545.4,M,46.9,M,5,0120"
	gllPayload = "GPGLL,4916.45,N,12311.12,W,225444,A"
)
