package forecast

import "testing"

func intPtr(v int) *int { return &v }

func TestClassify(t *testing.T) {
	tests := []struct {
		name   string
		temp   int
		precip *int
		want   Clip
	}{
		{name: "cold dry", temp: 30, precip: intPtr(0), want: ColdDry},
		{name: "cold rainy", temp: 45, precip: intPtr(30), want: ColdRainy},
		{name: "warm dry", temp: 75, precip: intPtr(10), want: WarmDry},
		{name: "warm rainy", temp: 80, precip: intPtr(90), want: WarmRainy},
		{name: "temp boundary is warm", temp: 50, precip: intPtr(0), want: WarmDry},
		{name: "just below temp boundary", temp: 49, precip: intPtr(0), want: ColdDry},
		{name: "precip boundary is rainy", temp: 40, precip: intPtr(20), want: ColdRainy},
		{name: "just below precip boundary", temp: 60, precip: intPtr(19), want: WarmDry},
		{name: "both boundaries", temp: 50, precip: intPtr(20), want: WarmRainy},
		{name: "nil precip is dry when cold", temp: 10, precip: nil, want: ColdDry},
		{name: "nil precip is dry when warm", temp: 90, precip: nil, want: WarmDry},
		{name: "negative temperature", temp: -20, precip: intPtr(100), want: ColdRainy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.temp, tt.precip); got != tt.want {
				t.Errorf("Classify(%d, %v) = %v, want %v", tt.temp, tt.precip, got, tt.want)
			}
		})
	}
}

func TestClassify_TotalOverRange(t *testing.T) {
	valid := map[Clip]bool{}
	for _, c := range Clips() {
		valid[c] = true
	}
	for temp := -40; temp <= 130; temp += 7 {
		for precip := 0; precip <= 100; precip += 5 {
			p := precip
			got := Classify(temp, &p)
			if !valid[got] {
				t.Fatalf("Classify(%d, %d) = %v, not a known clip", temp, precip, got)
			}
			if again := Classify(temp, &p); again != got {
				t.Fatalf("Classify(%d, %d) not deterministic: %v then %v", temp, precip, got, again)
			}
		}
	}
}

func TestClip_Name(t *testing.T) {
	want := map[Clip]string{
		ColdDry:   "cold and dry",
		ColdRainy: "cold and rainy",
		WarmDry:   "warm and dry",
		WarmRainy: "warm and rainy",
	}
	for clip, name := range want {
		if clip.Name() != name {
			t.Errorf("%d.Name() = %q, want %q", int(clip), clip.Name(), name)
		}
	}
	if got := Clip(42).Name(); got != "clip(42)" {
		t.Errorf("Clip(42).Name() = %q", got)
	}
}

func TestCategorizeAQI(t *testing.T) {
	tests := []struct {
		aqi  int
		want AirQuality
	}{
		{aqi: 0, want: Good},
		{aqi: 50, want: Good},
		{aqi: 51, want: Moderate},
		{aqi: 75, want: Moderate},
		{aqi: 100, want: Moderate},
		{aqi: 101, want: Bad},
		{aqi: 350, want: Bad},
	}
	for _, tt := range tests {
		if got := CategorizeAQI(tt.aqi); got != tt.want {
			t.Errorf("CategorizeAQI(%d) = %v, want %v", tt.aqi, got, tt.want)
		}
	}
}

func TestWeatherReading_Precipitation(t *testing.T) {
	if got := (WeatherReading{}).Precipitation(); got != 0 {
		t.Errorf("nil precipitation = %d, want 0", got)
	}
	if got := (WeatherReading{PrecipitationChance: intPtr(35)}).Precipitation(); got != 35 {
		t.Errorf("precipitation = %d, want 35", got)
	}
}
