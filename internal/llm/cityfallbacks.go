package llm

import (
	"strings"

	a "github.com/petar-dambovaliev/aho-corasick"
)

// Static City DNA used when no model is configured or the model fails.
// Curated entries for the top cities; anything else gets a regional or
// generic profile.

var defaultFallback = CityDNA{
	City:             "Unknown",
	Language:         "es",
	NegativeKeywords: []string{"tourist_trap", "overpriced"},
	Etiquette:        []string{"Tip 10-15% if service was good"},
}

var cityFallbacks = map[string]CityDNA{
	"munich": {
		City:     "Munich",
		Language: "es",
		FoodTypicals: []Typical{
			{
				Name:       "Weißwurst",
				Note:       "Salchicha blanca bávara tradicional, solo se come antes del mediodía",
				When:       []string{"morning", "brunch"},
				HowToOrder: "Si ves Weißwurst en el menú antes de las 12pm, pídelo con mostaza dulce",
			},
			{
				Name:       "Schweinshaxe",
				Note:       "Codillo de cerdo asado, crujiente por fuera y jugoso por dentro",
				When:       []string{"midday", "evening"},
				HowToOrder: "Pregunta si tienen Schweinshaxe con Knödel (albóndigas de papa)",
			},
			{
				Name:       "Bretzel",
				Note:       "Pretzel gigante típico de Baviera",
				When:       []string{"morning", "afternoon"},
				HowToOrder: "Pide Bretzel con Obatzda (queso cremoso bávaro con especias)",
			},
			{
				Name:       "Kaiserschmarrn",
				Note:       "Panqueque dulce desmigajado, postre tradicional",
				When:       []string{"afternoon", "evening"},
				HowToOrder: "Típico de postre, pídelo con compota de ciruelas",
			},
		},
		DrinkTypicals: []Typical{
			{
				Name:       "Maß",
				Note:       "1 litro de cerveza, medida tradicional en cervecerías",
				When:       []string{"midday", "evening"},
				HowToOrder: "Pide una Maß Helles (clara) o Dunkel (oscura)",
			},
			{
				Name:       "Radler",
				Note:       "Cerveza mezclada con limonada, refrescante",
				When:       []string{"afternoon"},
				HowToOrder: "Perfecto para días calurosos, pide Radler en terrazas",
			},
			{
				Name:       "Schnapps",
				Note:       "Aguardiente de frutas, digestivo tradicional",
				When:       []string{"evening", "late"},
				HowToOrder: "Pídelo después de la cena como digestivo",
			},
		},
		LocalKeywords:    []string{"biergarten", "bavarian", "traditional", "brewery", "wirtshaus"},
		NegativeKeywords: []string{"tourist_trap", "hofbräuhaus_overpriced"},
		Etiquette: []string{
			"En Biergarten (jardines de cerveza), es normal compartir mesa si está lleno",
			"Saluda con 'Grüß Gott' en vez de 'Hallo' para sonar más local",
			"Los domingos la mayoría de tiendas cierran, planifica con anticipación",
		},
		NeighborhoodHints: []NeighborhoodHint{
			{Name: "Schwabing", Vibe: []string{"artsy", "student", "lively"}, BestFor: []string{"nightlife", "cafes", "shopping"}},
			{Name: "Glockenbachviertel", Vibe: []string{"hip", "diverse", "lgbtq-friendly"}, BestFor: []string{"bars", "restaurants", "nightlife"}},
			{Name: "Maxvorstadt", Vibe: []string{"cultural", "museum", "university"}, BestFor: []string{"museums", "galleries", "cafes"}},
		},
	},
	"berlin": {
		City:     "Berlin",
		Language: "es",
		FoodTypicals: []Typical{
			{
				Name:       "Currywurst",
				Note:       "Salchicha con curry ketchup, icónico de Berlín",
				When:       []string{"midday", "evening", "late"},
				HowToOrder: "Si ves Currywurst, pídelo con papas fritas",
			},
			{
				Name:       "Döner Kebab",
				Note:       "Kebab turco, Berlin tiene los mejores",
				When:       []string{"midday", "evening", "late"},
				HowToOrder: "Pregunta si hacen döner fresco, con todas las salsas",
			},
			{
				Name:       "Berliner Pfannkuchen",
				Note:       "Donut relleno de mermelada",
				When:       []string{"morning", "afternoon"},
				HowToOrder: "En panaderías, pide Berliner",
			},
		},
		DrinkTypicals: []Typical{
			{
				Name:       "Berliner Weiße",
				Note:       "Cerveza ácida con jarabe de frambuesa o woodruff",
				When:       []string{"afternoon", "evening"},
				HowToOrder: "Pide Berliner Weiße mit Schuss (con jarabe)",
			},
			{
				Name:       "Club-Mate",
				Note:       "Bebida energética de yerba mate, culto en Berlín",
				When:       []string{"afternoon", "evening", "late"},
				HowToOrder: "Típica en bares alternativos, pregunta por Club-Mate",
			},
		},
		LocalKeywords:    []string{"street_food", "kebab", "alternative", "techno", "kreuzberg"},
		NegativeKeywords: []string{"checkpoint_charlie_area"},
		Etiquette: []string{
			"Berlín es muy informal, no te vistas demasiado elegante",
			"Los bares de techno tienen door policy estricta",
			"Recicla tu basura, los berlineses son serios con esto",
		},
	},
	"madrid": {
		City:     "Madrid",
		Language: "es",
		FoodTypicals: []Typical{
			{
				Name:       "Bocadillo de Calamares",
				Note:       "Bocadillo de calamares fritos, clásico madrileño",
				When:       []string{"midday", "afternoon"},
				HowToOrder: "Evita Plaza Mayor (turístico), busca bares locales para mejor calidad",
			},
			{
				Name:       "Cocido Madrileño",
				Note:       "Estofado de garbanzos con carne y verduras, plato invernal",
				When:       []string{"midday"},
				HowToOrder: "Si ves Cocido en el menú del día (típico jueves), pídelo",
			},
			{
				Name:       "Churros con Chocolate",
				Note:       "Churros crujientes con chocolate espeso para mojar",
				When:       []string{"morning", "late"},
				HowToOrder: "Tradicional para desayuno o después de salir de fiesta",
			},
			{
				Name:       "Huevos Rotos",
				Note:       "Huevos fritos sobre papas fritas, se rompen al servir",
				When:       []string{"midday", "evening"},
				HowToOrder: "Pídelo con jamón ibérico, es un clásico madrileño",
			},
		},
		DrinkTypicals: []Typical{
			{
				Name:       "Caña",
				Note:       "Cerveza pequeña de barril (200ml), típica en bares",
				When:       []string{"afternoon", "evening"},
				HowToOrder: "Simplemente pide 'una caña' en cualquier bar",
			},
			{
				Name:       "Tinto de Verano",
				Note:       "Vino tinto con gaseosa, más ligero que sangría",
				When:       []string{"afternoon", "evening"},
				HowToOrder: "Refrescante en verano, pregunta por tinto de verano",
			},
			{
				Name:       "Vermut",
				Note:       "Vermut de grifo, tradición del aperitivo",
				When:       []string{"midday"},
				HowToOrder: "Típico el domingo antes de comer, pide vermut de grifo",
			},
		},
		LocalKeywords:    []string{"tapas", "taberna", "castizo", "mercado", "terraza"},
		NegativeKeywords: []string{"tourist_menu", "sol_area", "plaza_mayor_restaurants"},
		Etiquette: []string{
			"Cena tarde: restaurantes se llenan después de las 21:00-22:00",
			"Es normal ir de tapas (tapear) saltando de bar en bar",
			"En mercados como San Miguel, los precios son muy turísticos",
		},
		NeighborhoodHints: []NeighborhoodHint{
			{Name: "Malasaña", Vibe: []string{"hipster", "alternative", "young"}, BestFor: []string{"nightlife", "vintage shopping", "cafes"}},
			{Name: "La Latina", Vibe: []string{"traditional", "tapas", "lively"}, BestFor: []string{"tapas bars", "sunday vermouth"}},
		},
	},
	"barcelona": {
		City:     "Barcelona",
		Language: "es",
		FoodTypicals: []Typical{
			{
				Name:       "Pan con Tomate",
				Note:       "Pan tostado con tomate rallado, aceite y sal",
				When:       []string{"morning", "midday"},
				HowToOrder: "Si ves 'pa amb tomàquet', pídelo, es básico catalán para acompañar",
			},
			{
				Name:       "Patatas Bravas",
				Note:       "Papas fritas con salsa brava y alioli",
				When:       []string{"afternoon", "evening"},
				HowToOrder: "Pregunta por bravas, cada bar tiene su receta secreta",
			},
			{
				Name:       "Crema Catalana",
				Note:       "Postre similar a crème brûlée pero más ligero",
				When:       []string{"afternoon", "evening"},
				HowToOrder: "Postre típico catalán, pídelo después de la comida",
			},
		},
		DrinkTypicals: []Typical{
			{
				Name:       "Vermut",
				Note:       "Vermut artesanal catalán, tradición del aperitivo",
				When:       []string{"midday", "afternoon"},
				HowToOrder: "Típico antes de comer, pide vermut de grifo (del barril)",
			},
			{
				Name:       "Cava",
				Note:       "Espumoso catalán, similar a champagne",
				When:       []string{"evening"},
				HowToOrder: "Producido localmente en Penedès, pregunta por cava catalán",
			},
			{
				Name:       "Carajillo",
				Note:       "Café con brandy o licor, digestivo típico",
				When:       []string{"evening"},
				HowToOrder: "Después de comer, pide un carajillo",
			},
		},
		LocalKeywords:    []string{"catalan", "vermuteria", "bodega", "mercat", "rambla_alternatives"},
		NegativeKeywords: []string{"las_ramblas_restaurants", "tourist_menu", "sagrada_familia_area"},
		Etiquette: []string{
			"Muchos locales hablan catalán primero, pero todos entienden español",
			"Evita Las Ramblas para comer, zonas como Gràcia o Poblenou son mejores",
			"Siesta: algunos negocios cierran 14:00-17:00",
		},
		NeighborhoodHints: []NeighborhoodHint{
			{Name: "Gràcia", Vibe: []string{"bohemian", "local", "artistic"}, BestFor: []string{"authentic dining", "small plazas", "local bars"}},
			{Name: "El Born", Vibe: []string{"trendy", "historic", "nightlife"}, BestFor: []string{"tapas", "cocktail bars", "shopping"}},
		},
	},
	"paris": {
		City:     "Paris",
		Language: "es",
		FoodTypicals: []Typical{
			{
				Name:       "Croissant",
				Note:       "Croissant mantequilloso, mejor en panaderías artesanales",
				When:       []string{"morning"},
				HowToOrder: "Pide 'un croissant au beurre' (con mantequilla), evita los industriales",
			},
			{
				Name:       "Steak Frites",
				Note:       "Filete con papas fritas, simple pero delicioso",
				When:       []string{"midday", "evening"},
				HowToOrder: "En bistrot, pide el steak a punto (à point) con mantequilla de hierbas",
			},
			{
				Name:       "Crêpe",
				Note:       "Crepa dulce o salada, típica parisina",
				When:       []string{"afternoon", "evening"},
				HowToOrder: "Dulce con Nutella, salada (galette) con huevo y queso",
			},
		},
		DrinkTypicals: []Typical{
			{
				Name:       "Café",
				Note:       "Espresso corto, se toma parado en la barra",
				When:       []string{"morning", "afternoon"},
				HowToOrder: "Pide 'un café' (espresso) o 'un café crème' (con leche)",
			},
			{
				Name:       "Vin Rouge",
				Note:       "Vino tinto o blanco, calidad excelente",
				When:       []string{"midday", "evening"},
				HowToOrder: "Pide una copa (un verre) o botella, pregunta recomendación del día",
			},
			{
				Name:       "Pastis",
				Note:       "Licor anisado típico francés, aperitivo",
				When:       []string{"afternoon", "evening"},
				HowToOrder: "Se mezcla con agua, pídelo como aperitivo",
			},
		},
		LocalKeywords:    []string{"bistrot", "boulangerie", "marché", "terrasse", "quartier"},
		NegativeKeywords: []string{"champs_elysees_restaurants", "tourist_trap_latin_quarter"},
		Etiquette: []string{
			"Saluda siempre con 'Bonjour' al entrar a una tienda",
			"Propinas no son obligatorias (servicio incluido), pero redondea la cuenta",
			"No hables fuerte en restaurantes, los franceses valoran la discreción",
		},
	},
	"london": {
		City:     "London",
		Language: "es",
		FoodTypicals: []Typical{
			{
				Name:       "Fish and Chips",
				Note:       "Pescado frito con papas fritas, clásico británico",
				When:       []string{"midday", "evening"},
				HowToOrder: "Pídelo en un pub tradicional con guisantes machacados (mushy peas)",
			},
			{
				Name:       "Full English Breakfast",
				Note:       "Desayuno completo: huevos, bacon, salchicha, frijoles, tomate",
				When:       []string{"morning"},
				HowToOrder: "En cafés tradicionales, pide el 'Full English' completo",
			},
			{
				Name:       "Sunday Roast",
				Note:       "Asado dominical con verduras y Yorkshire pudding",
				When:       []string{"midday"},
				HowToOrder: "Típico los domingos en pubs, reserva con anticipación",
			},
		},
		DrinkTypicals: []Typical{
			{
				Name:       "Pint",
				Note:       "Pinta de cerveza (568ml), ale o lager",
				When:       []string{"afternoon", "evening"},
				HowToOrder: "Pide 'a pint of...' en el bar, no hay servicio en mesa para bebidas",
			},
			{
				Name:       "Gin & Tonic",
				Note:       "Gin tonic con pepino, tradición londinense",
				When:       []string{"evening"},
				HowToOrder: "Londres tiene gin bars especializados, pregunta por gin local",
			},
			{
				Name:       "Tea",
				Note:       "Té negro con leche, bebida nacional",
				When:       []string{"afternoon"},
				HowToOrder: "Afternoon tea (3-5pm) con scones en hoteles o cafés elegantes",
			},
		},
		LocalKeywords:    []string{"pub", "market", "borough", "ale", "traditional"},
		NegativeKeywords: []string{"leicester_square_restaurants", "oxford_street_dining"},
		Etiquette: []string{
			"Haz fila (queue) siempre, los británicos son estrictos con esto",
			"En el pub, ordena en la barra y paga inmediatamente",
			"Propina 10-12.5% en restaurantes si el servicio no está incluido",
		},
	},
	"rome": {
		City:     "Rome",
		Language: "es",
		FoodTypicals: []Typical{
			{
				Name:       "Carbonara",
				Note:       "Pasta con huevo, guanciale, pecorino, pimienta negra",
				When:       []string{"midday", "evening"},
				HowToOrder: "La auténtica NO lleva crema, si la ves con crema es turística",
			},
			{
				Name:       "Cacio e Pepe",
				Note:       "Pasta con queso pecorino y pimienta negra, simple pero perfecta",
				When:       []string{"midday", "evening"},
				HowToOrder: "Plato romano tradicional, pídelo en trattorie locales",
			},
			{
				Name:       "Supplì",
				Note:       "Bola de arroz frita con mozzarella derretida dentro",
				When:       []string{"afternoon", "evening"},
				HowToOrder: "Snack típico romano, cómelo caliente al salir de la fritura",
			},
			{
				Name:       "Gelato",
				Note:       "Helado artesanal italiano",
				When:       []string{"afternoon", "evening"},
				HowToOrder: "Evita colores muy brillantes (artificial), busca gelaterias artesanales",
			},
		},
		DrinkTypicals: []Typical{
			{
				Name:       "Espresso",
				Note:       "Café corto, se toma parado en la barra",
				When:       []string{"morning", "afternoon"},
				HowToOrder: "Pide 'un caffè' (espresso), NUNCA cappuccino después de las 11am",
			},
			{
				Name:       "Aperol Spritz",
				Note:       "Aperitivo con Aperol, prosecco y soda",
				When:       []string{"evening"},
				HowToOrder: "Típico del aperitivo (6-8pm), pídelo con snacks incluidos",
			},
		},
		LocalKeywords:    []string{"trattoria", "osteria", "romano", "trastevere", "testaccio"},
		NegativeKeywords: []string{"colosseum_area_restaurants", "termini_station_dining"},
		Etiquette: []string{
			"No pidas cappuccino después de las 11am",
			"Coperto (cargo por cubierto) es normal, 1-3€ por persona",
			"Propina no es obligatoria, redondea si gustó el servicio",
		},
	},
	"milan": {
		City:     "Milan",
		Language: "es",
		FoodTypicals: []Typical{
			{
				Name:       "Risotto alla Milanese",
				Note:       "Risotto con azafrán, cremoso y amarillo",
				When:       []string{"midday", "evening"},
				HowToOrder: "Plato típico milanés, pídelo como primo piatto",
			},
			{
				Name:       "Cotoletta alla Milanese",
				Note:       "Chuleta de ternera empanizada, frita en mantequilla",
				When:       []string{"midday", "evening"},
				HowToOrder: "Similar al Wiener Schnitzel, pero con hueso",
			},
		},
		DrinkTypicals: []Typical{
			{
				Name:       "Negroni",
				Note:       "Cocktail con gin, Campari y vermut",
				When:       []string{"evening"},
				HowToOrder: "Milán es la ciudad del aperitivo, pídelo a las 6-7pm",
			},
			{
				Name:       "Caffè",
				Note:       "Espresso, Milán toma café muy en serio",
				When:       []string{"morning", "afternoon"},
				HowToOrder: "Párate en la barra, tómalo rápido como los milaneses",
			},
		},
		LocalKeywords:    []string{"aperitivo", "milanese", "fashion", "design", "navigli"},
		NegativeKeywords: []string{"duomo_area_restaurants", "tourist_trap"},
		Etiquette: []string{
			"Milán es la ciudad más europea de Italia, más formal que Roma",
			"Aperitivo (6-8pm): paga una bebida, snacks buffet incluidos",
			"Vístete bien, los milaneses son fashion-conscious",
		},
	},
	"amsterdam": {
		City:     "Amsterdam",
		Language: "es",
		FoodTypicals: []Typical{
			{
				Name:       "Stroopwafel",
				Note:       "Galleta de caramelo, mejor caliente del mercado",
				When:       []string{"morning", "afternoon"},
				HowToOrder: "Cómpralo fresco en mercados, ponlo sobre tu café para que se caliente",
			},
			{
				Name:       "Bitterballen",
				Note:       "Croquetas fritas de carne, típico snack de bar",
				When:       []string{"evening"},
				HowToOrder: "Pídelo en cualquier bar con cerveza, usa palillo para comer",
			},
			{
				Name:       "Haring",
				Note:       "Arenque crudo con cebolla y pepinillos",
				When:       []string{"afternoon"},
				HowToOrder: "En puestos de pescado, cómelo sosteniéndolo por la cola",
			},
		},
		DrinkTypicals: []Typical{
			{
				Name:       "Jenever",
				Note:       "Gin holandés, precursor del gin",
				When:       []string{"evening"},
				HowToOrder: "Pruébalo en proeflokalen (bares de degustación tradicionales)",
			},
			{
				Name:       "Koffie",
				Note:       "Café holandés, fuerte y negro",
				When:       []string{"morning", "afternoon"},
				HowToOrder: "Los cafés marrones (brown cafes) tienen el mejor ambiente",
			},
		},
		LocalKeywords:    []string{"gezellig", "brown_cafe", "canal", "bike_friendly", "market"},
		NegativeKeywords: []string{"dam_square_restaurants", "red_light_district_dining"},
		Etiquette: []string{
			"Holandeses son directos, no lo tomes personal",
			"Cuidado con las ciclovías, no camines por ahí",
			"Propina: redondea o deja 5-10%",
		},
	},
	"lisbon": {
		City:     "Lisbon",
		Language: "es",
		FoodTypicals: []Typical{
			{
				Name:       "Pastel de Nata",
				Note:       "Tarta de crema, mejor caliente con canela",
				When:       []string{"morning", "afternoon"},
				HowToOrder: "Los mejores están en Belém, pero pruébalos frescos en cualquier pastelería",
			},
			{
				Name:       "Bacalhau",
				Note:       "Bacalao, hay 365 formas de prepararlo",
				When:       []string{"midday", "evening"},
				HowToOrder: "Pregunta por el bacalhau del día, cada restaurante tiene su especialidad",
			},
			{
				Name:       "Sardinhas Assadas",
				Note:       "Sardinas asadas, típicas en verano",
				When:       []string{"midday", "evening"},
				HowToOrder: "Especialmente en junio (festas de Santo António), pídelas frescas",
			},
		},
		DrinkTypicals: []Typical{
			{
				Name:       "Ginjinha",
				Note:       "Licor de cereza ácida, shot típico lisboeta",
				When:       []string{"afternoon", "evening"},
				HowToOrder: "En barras especializadas, pídelo 'com elas' (con las cerezas dentro)",
			},
			{
				Name:       "Vinho Verde",
				Note:       "Vino verde portugués, ligero y con burbujas",
				When:       []string{"midday", "afternoon"},
				HowToOrder: "Refrescante en verano, pídelo bien frío",
			},
		},
		LocalKeywords:    []string{"tasco", "cervejaria", "fado", "miradouro", "bairro"},
		NegativeKeywords: []string{"baixa_tourist_restaurants", "rossio_overpriced"},
		Etiquette: []string{
			"Aprende algunas palabras en portugués, no es español",
			"Propina: 5-10% si el servicio fue bueno",
			"Cuidado con las cuestas, Lisboa tiene muchas colinas",
		},
	},
	"new york": {
		City:     "New York",
		Language: "es",
		FoodTypicals: []Typical{
			{
				Name:       "New York Pizza",
				Note:       "Pizza al estilo NY, rebanadas grandes y delgadas",
				When:       []string{"midday", "evening", "late"},
				HowToOrder: "Pide 'a slice' (rebanada) para probar, dóblala para comerla",
			},
			{
				Name:       "Bagel",
				Note:       "Panecillo hervido y horneado, con cream cheese y salmón",
				When:       []string{"morning"},
				HowToOrder: "Pide un bagel con lox (salmón ahumado) y cream cheese",
			},
			{
				Name:       "Cheesecake",
				Note:       "Tarta de queso estilo NY, densa y cremosa",
				When:       []string{"afternoon", "evening"},
				HowToOrder: "Juniors en Brooklyn es famoso, pero hay muchas opciones",
			},
		},
		DrinkTypicals: []Typical{
			{
				Name:       "Coffee",
				Note:       "Café americano grande, cultura del café para llevar",
				When:       []string{"morning", "afternoon"},
				HowToOrder: "Deli coffee es más barato que Starbucks y más auténtico",
			},
			{
				Name:       "Craft Beer",
				Note:       "Cerveza artesanal, Brooklyn tiene muchas cervecerías",
				When:       []string{"evening"},
				HowToOrder: "Pregunta por cervezas locales de Brooklyn o Queens",
			},
		},
		LocalKeywords:    []string{"deli", "bodega", "brooklyn", "queens", "dive_bar"},
		NegativeKeywords: []string{"times_square_restaurants", "tourist_trap_midtown"},
		Etiquette: []string{
			"Propina obligatoria: 18-20% en restaurantes, 15-18% en bares",
			"Camina rápido, los neoyorquinos van con prisa",
		},
	},
	"tokyo": {
		City:     "Tokyo",
		Language: "es",
		FoodTypicals: []Typical{
			{
				Name:       "Ramen",
				Note:       "Sopa de fideos, hay muchos estilos regionales",
				When:       []string{"midday", "evening", "late"},
				HowToOrder: "Haz ruido al comer (es de buena educación), termina todo el caldo",
			},
			{
				Name:       "Sushi",
				Note:       "Sushi fresco, Tokyo tiene el mejor del mundo",
				When:       []string{"midday", "evening"},
				HowToOrder: "En sushi bars, come de la barra para ver al chef trabajar",
			},
			{
				Name:       "Tonkatsu",
				Note:       "Chuleta de cerdo empanizada, jugosa y crujiente",
				When:       []string{"midday", "evening"},
				HowToOrder: "Viene con col rallada, moja en salsa tonkatsu",
			},
		},
		DrinkTypicals: []Typical{
			{
				Name:       "Sake",
				Note:       "Vino de arroz, puede ser frío o caliente",
				When:       []string{"evening"},
				HowToOrder: "Pregunta al staff si recomienda sake local (jizake)",
			},
			{
				Name:       "Highball",
				Note:       "Whisky con soda, muy popular en izakayas",
				When:       []string{"evening"},
				HowToOrder: "Bebida típica de after-work, refrescante",
			},
		},
		LocalKeywords:    []string{"izakaya", "konbini", "depachika", "standing_bar", "yokocho"},
		NegativeKeywords: []string{"shinjuku_tourist_restaurants", "roppongi_overpriced"},
		Etiquette: []string{
			"No des propina, se considera ofensivo",
			"Quítate los zapatos en restaurantes tradicionales",
			"No hables por teléfono en el tren",
		},
	},
	"bangkok": {
		City:     "Bangkok",
		Language: "es",
		FoodTypicals: []Typical{
			{
				Name:       "Pad Thai",
				Note:       "Fideos salteados con tamarindo, maní y limón",
				When:       []string{"midday", "evening"},
				HowToOrder: "De puestos callejeros es más auténtico, ajusta el picante",
			},
			{
				Name:       "Tom Yum Goong",
				Note:       "Sopa picante y ácida con camarones",
				When:       []string{"midday", "evening"},
				HowToOrder: "Pídelo 'mai pet' (no picante) si no toleras mucho picante",
			},
			{
				Name:       "Mango Sticky Rice",
				Note:       "Postre de mango con arroz glutinoso y leche de coco",
				When:       []string{"afternoon", "evening"},
				HowToOrder: "Mejor en temporada de mangos (marzo-junio)",
			},
		},
		DrinkTypicals: []Typical{
			{
				Name:       "Thai Iced Tea",
				Note:       "Té tailandés con leche condensada, muy dulce",
				When:       []string{"afternoon"},
				HowToOrder: "Refrescante con el calor, pide 'cha yen'",
			},
			{
				Name:       "Chang Beer",
				Note:       "Cerveza tailandesa popular",
				When:       []string{"evening"},
				HowToOrder: "Típica en street food, pide bien fría",
			},
		},
		LocalKeywords:    []string{"street_food", "night_market", "boat_noodles", "isaan", "khao_san"},
		NegativeKeywords: []string{"khao_san_road_restaurants", "tourist_trap_riverside"},
		Etiquette: []string{
			"No toques la cabeza de nadie, es sagrada",
			"Quítate los zapatos antes de entrar a casas y templos",
			"Respeta las imágenes de la familia real",
		},
	},
}

// Regional generic profiles for cities outside the curated table. The
// matcher recognizes well-known city names per region.
var regionFallbacks = map[string]CityDNA{
	"european": {
		City:             "Unknown",
		Language:         "es",
		LocalKeywords:    []string{"mercado", "old_town", "terraza"},
		NegativeKeywords: []string{"tourist_trap", "overpriced", "main_square_restaurants"},
		Etiquette: []string{
			"Evita los restaurantes pegados a los monumentos principales",
			"Propina: redondea o deja 5-10% si el servicio fue bueno",
		},
	},
	"asian": {
		City:             "Unknown",
		Language:         "es",
		LocalKeywords:    []string{"street_food", "night_market", "local_eatery"},
		NegativeKeywords: []string{"tourist_trap", "overpriced"},
		Etiquette: []string{
			"La propina no es costumbre en muchos países asiáticos",
			"Quítate los zapatos donde veas que los locales lo hacen",
		},
	},
	"latin": {
		City:             "Unknown",
		Language:         "es",
		LocalKeywords:    []string{"mercado", "fonda", "cantina"},
		NegativeKeywords: []string{"tourist_trap", "overpriced"},
		Etiquette: []string{
			"Come donde comen los locales, los mercados son buena apuesta",
			"Propina: 10% es lo habitual en restaurantes",
		},
	},
	"north_american": {
		City:             "Unknown",
		Language:         "es",
		LocalKeywords:    []string{"diner", "food_truck", "craft_beer"},
		NegativeKeywords: []string{"tourist_trap", "overpriced"},
		Etiquette: []string{
			"Propina obligatoria: 15-20% en restaurantes",
			"Los impuestos no están incluidos en los precios del menú",
		},
	},
}

var regionCityKeywords = map[string]string{
	"vienna": "european", "prague": "european", "budapest": "european",
	"hamburg": "european", "cologne": "european", "valencia": "european",
	"seville": "european", "porto": "european", "florence": "european",
	"venice": "european", "naples": "european", "dublin": "european",
	"edinburgh": "european", "brussels": "european", "copenhagen": "european",
	"stockholm": "european", "oslo": "european", "helsinki": "european",
	"warsaw": "european", "krakow": "european", "athens": "european",
	"zurich": "european", "geneva": "european",
	"osaka": "asian", "kyoto": "asian", "seoul": "asian",
	"singapore": "asian", "taipei": "asian", "shanghai": "asian",
	"beijing": "asian", "hanoi": "asian", "saigon": "asian",
	"mexico": "latin", "bogota": "latin", "lima": "latin",
	"santiago": "latin", "buenos": "latin", "montevideo": "latin",
	"medellin": "latin", "guadalajara": "latin",
	"chicago": "north_american", "boston": "north_american",
	"seattle": "north_american", "austin": "north_american",
	"toronto": "north_american", "vancouver": "north_american",
	"montreal": "north_american", "francisco": "north_american",
}

var (
	regionMatcherBuilder = a.NewAhoCorasickBuilder(a.Opts{
		AsciiCaseInsensitive: true,
		MatchOnlyWholeWords:  true,
	})
	regionMatcher = regionMatcherBuilder.Build(regionPatterns())
)

func regionPatterns() []string {
	patterns := make([]string, 0, len(regionCityKeywords))
	for k := range regionCityKeywords {
		patterns = append(patterns, k)
	}
	return patterns
}

// CityFallback returns the static DNA for a city. Unknown cities get a
// regional profile when the name matches a known city keyword, otherwise
// the generic default. The city field is always filled in.
func CityFallback(city string) CityDNA {
	lookup := strings.ToLower(strings.TrimSpace(city))
	if dna, ok := cityFallbacks[lookup]; ok {
		return dna
	}

	dna := defaultFallback
	matches := regionMatcher.FindAll(lookup)
	for _, match := range matches {
		word := lookup[match.Start():match.End()]
		if region, ok := regionCityKeywords[word]; ok {
			dna = regionFallbacks[region]
			break
		}
	}
	if city != "" {
		dna.City = city
	}
	return dna
}
