package capability

import "github.com/go-wfd/wfdsource/wfdparam"

// resolutionTables maps each family's defined bitmap bit index to its
// {width, height, framerate, interleaved} tuple. Bits with no entry are
// valid bitmap positions that this implementation's static tables simply
// do not define (the WFD spec reserves some bits); LookupResolution
// reports ok=false for those.
var resolutionTables = map[wfdparam.ResolutionFamily]map[int]Resolution{
	wfdparam.ResolutionFamilyCEA: {
		0:  {640, 480, 60, false},
		1:  {720, 480, 60, false},
		2:  {720, 480, 60, true},
		3:  {720, 576, 50, false},
		4:  {720, 576, 50, true},
		5:  {1280, 720, 30, false},
		6:  {1280, 720, 60, false},
		7:  {1920, 1080, 30, false},
		8:  {1920, 1080, 60, false},
		9:  {1920, 1080, 60, true},
		10: {1280, 720, 25, false},
		11: {1280, 720, 50, false},
		12: {1920, 1080, 25, false},
		13: {1920, 1080, 50, false},
		14: {1920, 1080, 50, true},
		15: {1280, 720, 24, false},
		16: {1920, 1080, 24, false},
	},
	wfdparam.ResolutionFamilyVESA: {
		0: {800, 600, 30, false},
		1: {800, 600, 60, false},
		2: {1024, 768, 30, false},
		3: {1024, 768, 60, false},
		4: {1152, 864, 30, false},
		5: {1280, 768, 30, false},
		6: {1280, 768, 60, false},
		7: {1280, 800, 30, false},
		8: {1280, 800, 60, false},
		9: {1360, 768, 60, false},
	},
	wfdparam.ResolutionFamilyHH: {
		0: {800, 480, 30, false},
		1: {800, 480, 60, false},
		2: {854, 480, 30, false},
		3: {854, 480, 60, false},
		4: {864, 480, 30, false},
		5: {864, 480, 60, false},
		6: {640, 360, 30, false},
		7: {640, 360, 60, false},
		8: {960, 540, 30, false},
		9: {960, 540, 60, false},
	},
}

// LookupResolution resolves a family/bit index to its tuple.
func LookupResolution(family wfdparam.ResolutionFamily, bit int) (Resolution, bool) {
	table, ok := resolutionTables[family]
	if !ok {
		return Resolution{}, false
	}
	r, ok := table[bit]
	return r, ok
}
