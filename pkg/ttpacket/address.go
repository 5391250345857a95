// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package ttpacket implements the binary wire codec for the forest-sensor
// radio protocol: a 9-byte header (receiver address, sender address, type
// tag) followed by one of seven fixed-width payload shapes. All multi-byte
// fields are little-endian regardless of host byte order.
package ttpacket

import "fmt"

// Address identifies a radio endpoint. Equality and hashing are by value.
type Address uint32

// Multicast is the reserved address meaning "any gateway"; talkers address
// Helo packets to it on power-up.
const Multicast Address = 0x4A4A4A4A

func (a Address) String() string {
	return fmt.Sprintf("0x%08x", uint32(a))
}
