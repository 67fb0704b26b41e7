package badge

// ExperimentPool is the built-in icon pool for experiments
func ExperimentPool() *Pool {
	return &Pool{
		Fallback: "circle.fill",
		Categories: []Category{
			{Name: "social", Icons: []string{"person.2.fill", "person.3.fill", "figure.2", "person.wave.2.fill"}},
			{Name: "cognitive", Icons: []string{"brain.head.profile", "brain", "lightbulb.fill", "puzzlepiece.fill"}},
			{Name: "behavioral", Icons: []string{"pawprint.fill", "bell.fill", "arrow.triangle.branch", "repeat"}},
			{Name: "memory", Icons: []string{"memorychip", "doc.text.fill", "list.clipboard.fill", "tray.full.fill"}},
			{Name: "emotional", Icons: []string{"heart.fill", "face.smiling.fill", "bolt.heart.fill", "heart.circle.fill"}},
			{Name: "developmental", Icons: []string{"figure.and.child.holdinghands", "figure.2.and.child.holdinghands", "leaf.fill", "sparkles"}},
			{Name: "perception", Icons: []string{"eye.fill", "ear.fill", "hand.raised.fill", "camera.metering.spot"}},
			{Name: "obedience", Icons: []string{"figure.stand.line.dotted.figure.stand", "hand.raised.slash.fill", "exclamationmark.triangle.fill", "bolt.shield.fill"}},
			{Name: "conformity", Icons: []string{"person.3.sequence.fill", "arrow.left.arrow.right", "equal.circle.fill", "circle.grid.3x3.fill"}},
			{Name: "learning", Icons: []string{"book.fill", "graduationcap.fill", "pencil.and.outline", "text.book.closed.fill"}},
			{Name: "aggression", Icons: []string{"bolt.fill", "flame.fill", "burst.fill", "waveform.path.ecg"}},
			{Name: "attachment", Icons: []string{"link.circle.fill", "figure.2.arms.open", "hands.clap.fill", "gift.fill"}},
			{Name: "motivation", Icons: []string{"flag.fill", "star.fill", "trophy.fill", "target"}},
			{Name: "stress", Icons: []string{"waveform.path.ecg.rectangle.fill", "exclamationmark.circle.fill", "cloud.bolt.fill", "tornado"}},
			{Name: "default", Icons: []string{"flask.fill", "testtube.2", "atom", "questionmark.circle.fill", "magnifyingglass"}},
		},
	}
}

// TheoryPool is the built-in icon pool for theories
func TheoryPool() *Pool {
	return &Pool{
		Fallback: "lightbulb.fill",
		Categories: []Category{
			{Name: "social", Icons: []string{"person.2.fill", "person.3.fill", "figure.2", "person.wave.2.fill"}},
			{Name: "cognitive", Icons: []string{"brain.head.profile", "brain", "lightbulb.fill", "puzzlepiece.fill"}},
			{Name: "behavioral", Icons: []string{"pawprint.fill", "bell.fill", "arrow.triangle.branch", "repeat"}},
			{Name: "developmental", Icons: []string{"figure.and.child.holdinghands", "figure.2.and.child.holdinghands", "leaf.fill", "sparkles"}},
			{Name: "emotional", Icons: []string{"heart.fill", "face.smiling.fill", "bolt.heart.fill", "heart.circle.fill"}},
			{Name: "personality", Icons: []string{"person.crop.circle.fill", "theatermasks.fill", "star.circle.fill", "crown.fill"}},
			{Name: "learning", Icons: []string{"book.fill", "graduationcap.fill", "pencil.and.outline", "text.book.closed.fill"}},
			{Name: "motivation", Icons: []string{"flag.fill", "star.fill", "trophy.fill", "target"}},
			{Name: "attachment", Icons: []string{"link.circle.fill", "figure.2.arms.open", "hands.clap.fill", "gift.fill"}},
			{Name: "humanistic", Icons: []string{"sun.max.fill", "sparkle", "arrow.up.circle.fill", "rays"}},
			{Name: "psychodynamic", Icons: []string{"moon.fill", "cloud.fill", "eye.slash.fill", "waveform"}},
			{Name: "biological", Icons: []string{"brain.fill", "dna.helix", "heart.text.square.fill", "stethoscope"}},
			{Name: "default", Icons: []string{"lightbulb.fill", "questionmark.circle.fill", "magnifyingglass", "book.closed.fill"}},
		},
	}
}
