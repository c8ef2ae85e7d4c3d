package seed

// DemoCatalog - пять категорий по пять товаров, цены в рублях
var DemoCatalog = []CategorySeed{
	{
		Name:        "Смартфоны",
		Description: "Смартфоны ведущих производителей",
		Image:       "https://images.unsplash.com/photo-1511707171634-5f897ff02aa9?w=300",
		Products: []ProductSeed{
			{Name: "iPhone 15 Pro Max", Price: 129990, Description: "Чип A17 Pro, камера 48 Мп, титановый корпус"},
			{Name: "Samsung Galaxy S24 Ultra", Price: 119990, Description: "Snapdragon 8 Gen 3, стилус S Pen"},
			{Name: "Xiaomi 14", Price: 79990, Description: "Оптика Leica, зарядка 120 Вт"},
			{Name: "Oppo Reno 11 Pro", Price: 49990, Description: "Портретная камера, зарядка 67 Вт"},
			{Name: "Vivo V30", Price: 44990, Description: "Оптика Zeiss, тонкий корпус"},
		},
	},
	{
		Name:        "Ноутбуки",
		Description: "Ноутбуки для работы и игр",
		Image:       "https://images.unsplash.com/photo-1496181133206-80ce9b88a853?w=300",
		Products: []ProductSeed{
			{Name: "MacBook Pro M3", Price: 199990, Description: "Чип M3, 16 ГБ RAM, SSD 512 ГБ"},
			{Name: "Dell XPS 15", Price: 189990, Description: "Intel Core i7, RTX 4060, 4K OLED"},
			{Name: "ASUS ROG Zephyrus", Price: 169990, Description: "RTX 4070, экран 240 Гц"},
			{Name: "Lenovo ThinkPad X1", Price: 159990, Description: "Бизнес-класс, сканер отпечатка"},
			{Name: "HP Spectre x360", Price: 174990, Description: "Трансформер с сенсорным экраном"},
		},
	},
	{
		Name:        "Планшеты",
		Description: "Планшеты для учебы и развлечений",
		Image:       "https://images.unsplash.com/photo-1561154464-82e9adf32764?w=300",
		Products: []ProductSeed{
			{Name: "iPad Pro 12.9", Price: 129990, Description: "Чип M2, Liquid Retina XDR"},
			{Name: "Samsung Galaxy Tab S9", Price: 99990, Description: "AMOLED 120 Гц, S Pen в комплекте"},
			{Name: "Xiaomi Pad 6", Price: 34990, Description: "Snapdragon 870, 144 Гц, 8 ГБ RAM"},
			{Name: "Lenovo Tab P12", Price: 49990, Description: "12.7 дюйма, динамики JBL"},
			{Name: "iPad Air M2", Price: 79990, Description: "Чип M2, легкий корпус"},
		},
	},
	{
		Name:        "Аксессуары",
		Description: "Аксессуары для техники",
		Image:       "https://images.unsplash.com/photo-1572635196237-14b3f281503f?w=300",
		Products: []ProductSeed{
			{Name: "AirPods Pro 2", Price: 24990, Description: "Активное шумоподавление, чип H2"},
			{Name: "Клавиатура Keychron K8", Price: 10990, Description: "Hot-swap, RGB, беспроводная"},
			{Name: "Мышь Logitech MX Master 3S", Price: 9990, Description: "Сенсор 8K DPI, 70 дней работы"},
			{Name: "Powerbank Anker 20000 мАч", Price: 3990, Description: "Быстрая зарядка 65 Вт PD"},
			{Name: "Чехол iPhone 15 Pro MagSafe", Price: 1990, Description: "Противоударный, защита камеры"},
		},
	},
	{
		Name:        "Умные часы",
		Description: "Смарт-часы и носимые устройства",
		Image:       "https://images.unsplash.com/photo-1523275335684-37898b6baf30?w=300",
		Products: []ProductSeed{
			{Name: "Apple Watch Series 9", Price: 44990, Description: "Чип S9, Always-on, ЭКГ"},
			{Name: "Samsung Galaxy Watch 6", Price: 32990, Description: "Wear OS, мониторинг здоровья"},
			{Name: "Garmin Forerunner 965", Price: 64990, Description: "GPS, карты, 23 дня работы"},
			{Name: "Amazfit GTR 4", Price: 19990, Description: "AMOLED, GPS, 14 дней работы"},
			{Name: "Huawei Watch GT 3", Price: 24990, Description: "Классический дизайн, 14 дней работы"},
		},
	},
}
