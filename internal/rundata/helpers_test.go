// Copyright (C) 2025 Sideface Authors
// SPDX-License-Identifier: BSD-3-Clause

package rundata

// sampleProfile is the profile used throughout the tests:
//
//	main() 1000 -> foo 600 -> bar 200
func sampleProfile() Profile {
	return ProfileFromRaw(map[string]map[string]float64{
		"main()":       {"wt": 1000, "ct": 1, "mu": 4096},
		"main()==>foo": {"wt": 600, "ct": 2, "mu": 2048},
		"foo==>bar":    {"wt": 200, "ct": 2, "mu": 1024},
	})
}
