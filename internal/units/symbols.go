package units

// superscripts — символы, которые пользователь видит в выпадающих списках,
// и их ASCII-форма для таблицы конвертации.
var superscripts = map[string]string{
	"mm²": "mm2",
	"cm²": "cm2",
	"m²":  "m2",
	"in²": "in2",
	"ft²": "ft2",
	"yd²": "yd2",
	"mm³": "mm3",
	"cm³": "cm3",
	"m³":  "m3",
	"in³": "in3",
	"ft³": "ft3",
	"yd³": "yd3",
}

// Normalize возвращает ASCII-эквивалент символа единицы (mm² -> mm2).
// Неизвестные символы возвращаются без изменений.
func Normalize(symbol string) string {
	if s, ok := superscripts[symbol]; ok {
		return s
	}
	return symbol
}
