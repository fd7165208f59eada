package namematch

// KLeagueAliases lists spellings seen across providers for K League 1 and 2
// clubs, keyed by the schedule source's name.
func KLeagueAliases() map[string][]string {
	return map[string][]string{
		"Ulsan HD":                {"Ulsan Hyundai", "Ulsan Hyundai FC", "Ulsan HD FC"},
		"Pohang Steelers":         {"Pohang Steelers FC", "Pohang"},
		"Jeonbuk Hyundai Motors":  {"Jeonbuk Motors", "Jeonbuk Hyundai", "Jeonbuk"},
		"FC Seoul":                {"Seoul"},
		"Suwon Samsung Bluewings": {"Suwon Bluewings", "Suwon Samsung"},
		"Suwon FC":                {"Suwon City", "Suwon City FC"},
		"Gimcheon Sangmu":         {"Gimcheon Sangmu FC", "Gimcheon"},
		"Sangju Sangmu":           {"Sangju Sangmu FC", "Sangju"},
		"Daegu FC":                {"Daegu"},
		"Daejeon Hana Citizen":    {"Daejeon Citizen", "Daejeon Hana Citizen FC", "Daejeon"},
		"Gangwon FC":              {"Gangwon"},
		"Gwangju FC":              {"Gwangju"},
		"Jeju United":             {"Jeju SK", "Jeju SK FC", "Jeju United FC"},
		"Incheon United":          {"Incheon United FC", "Incheon"},
		"Seongnam FC":             {"Seongnam"},
		"Gyeongnam FC":            {"Gyeongnam"},
		"Busan IPark":             {"Busan I'Park", "Busan"},
		"Jeonnam Dragons":         {"Jeonnam"},
		"FC Anyang":               {"Anyang"},
		"Bucheon FC 1995":         {"Bucheon FC", "Bucheon"},
		"Seoul E-Land":            {"Seoul E-Land FC", "Seoul ELand"},
		"Chungnam Asan":           {"Chungnam Asan FC", "Asan"},
		"Cheonan City":            {"Cheonan City FC", "Cheonan"},
		"Chungbuk Cheongju":       {"Chungbuk Cheongju FC", "Cheongju"},
		"Gimpo FC":                {"Gimpo"},
		"Ansan Greeners":          {"Ansan Greeners FC", "Ansan"},
	}
}
