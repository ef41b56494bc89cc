package result

import "strings"

// SectionOrder is the canonical rendering order of measure sections.
var SectionOrder = []string{
	"ИАФ", "УПД", "ОПС", "ЗНИ", "РСБ",
	"АВЗ", "СОВ", "АНЗ", "ОЦЛ", "ОДТ",
	"ЗСВ", "ЗТС", "ЗИС", "ИНЦ", "УКФ",
}

var sectionLabels = map[string]string{
	"ИАФ": "Идентификация и аутентификация субъектов доступа и объектов доступа",
	"УПД": "Управление доступом субъектов доступа к объектам доступа",
	"ОПС": "Ограничение программной среды",
	"ЗНИ": "Защита машинных носителей информации, на которых хранятся и (или) обрабатываются персональные данные",
	"РСБ": "Регистрация событий безопасности",
	"АВЗ": "Антивирусная защита",
	"СОВ": "Обнаружение вторжений",
	"АНЗ": "Контроль (анализ) защищенности персональных данных",
	"ОЦЛ": "Обеспечение целостности информационной системы и персональных данных",
	"ОДТ": "Обеспечение доступности персональных данных",
	"ЗСВ": "Защита среды виртуализации",
	"ЗТС": "Защита технических средств",
	"ЗИС": "Защита информационной системы, ее средств, систем связи и передачи данных",
	"ИНЦ": "Выявление инцидентов (одного события или группы событий), которые могут привести к сбоям или нарушению функционирования информационной системы и (или) к возникновению угроз безопасности персональных данных, и реагирование на них",
	"УКФ": "Управление конфигурацией информационной системы и системы защиты персональных данных",
}

// SectionLabel returns the long-form heading for a section key, falling back
// to the key itself when no label is known.
func SectionLabel(key string) string {
	if label, ok := sectionLabels[normalizeSection(key)]; ok {
		return label
	}
	return strings.TrimSpace(key)
}

func normalizeSection(key string) string {
	return strings.ToUpper(strings.TrimSpace(key))
}

func sectionRank(key string) (int, bool) {
	key = normalizeSection(key)
	for i, candidate := range SectionOrder {
		if candidate == key {
			return i, true
		}
	}
	return 0, false
}
