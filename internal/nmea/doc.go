// Package nmea decodes NMEA 0183 GGA, GLL and RMC sentences from a GPS talker
// into a running navigation state.
//
// A Parser owns exactly one State. Each call to Parse validates the checksum,
// identifies the sentence and walks its fields in protocol order, committing
// each field as soon as it validates. Fields a sentence does not carry keep
// their previous value.
//
// Parser is not safe for concurrent use. Feed one complete sentence at a time
// and read accessors between calls.
package nmea
