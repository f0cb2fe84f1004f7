// SPDX-License-Identifier: EPL-2.0

//go:build csound

package main

import _ "github.com/ik5/blockbridge/engine/csound"
