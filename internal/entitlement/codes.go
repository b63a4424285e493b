package entitlement

// Static activation code lists distributed out of band, one per tier.
// Membership is exact after trimming surrounding whitespace.

var silverCodes = []string{
	"#S1@48$7!", "#SV@92&3?", "#S!5@0$6#", "#S8&@14$!", "#SL#67@9!",
	"#S@3$8&2!", "#S1#9@5$!", "#S@46!#8$", "#S$7@1!9#", "#S@0#5$6!",
}

var goldCodes = []string{
	"#G1@9$7!", "#GD@45&8!", "#G!8@2$6#", "#GOLD@9$1!", "#G7&@3$!",
	"#G@56!#8$", "#G9$@1!#", "#G@0#7$6!", "#G!4@9$#", "#G8@2$!#",
}

var platinumCodes = []string{
	"#P1@9$7!", "#PL@4&8$!", "#P!8@2$6#", "#PLT@9$1!", "#P7&@3$!",
	"#P@56!#8$", "#P9$@1!#", "#P@0#7$6!", "#P!4@9$#", "#P8@2$!#",
}

func codeInList(code string, list []string) bool {
	for _, c := range list {
		if c == code {
			return true
		}
	}
	return false
}
