package ai

import (
	"context"
	"strings"
	"unicode"

	"github.com/example/psychly/pkg/models"
)

type cannedRecord struct {
	Name       string
	Info       string
	Period     string
	People     string
	Hypothesis string
	Rejected   bool
	Category   string
}

var cannedExperiments = []cannedRecord{
	{
		Name:       "Stanford Prison Experiment",
		Info:       "Participants were randomly assigned to be 'prisoners' or 'guards' in a simulated prison. The study was ended early after guards became abusive and prisoners showed signs of extreme stress and emotional disturbance.",
		Period:     "1971",
		People:     "Philip Zimbardo",
		Hypothesis: "The brutality of prison guards comes from their personalities rather than from the prison environment.",
		Rejected:   true,
		Category:   "social",
	},
	{
		Name:       "Milgram Obedience Study",
		Info:       "Participants were instructed to administer increasingly powerful electric shocks to a learner (actually an actor). 65% of participants continued to the maximum 450-volt shock despite hearing screams of pain.",
		Period:     "1961",
		People:     "Stanley Milgram",
		Hypothesis: "Very few ordinary people would obey an authority figure who instructs them to seriously harm another person.",
		Rejected:   true,
		Category:   "obedience",
	},
	{
		Name:       "Little Albert Experiment",
		Info:       "A 9-month-old infant was conditioned to fear a white rat by pairing it with a loud, frightening noise. The fear generalized to other white, furry objects including a rabbit and a Santa Claus mask.",
		Period:     "1920",
		People:     "John B. Watson, Rosalie Rayner",
		Hypothesis: "An emotional fear response can be classically conditioned in a human infant.",
		Rejected:   false,
		Category:   "behavioral",
	},
	{
		Name:       "Bobo Doll Experiment",
		Info:       "Children observed adults behaving aggressively toward an inflatable doll. Those who watched aggressive models were significantly more likely to imitate the aggressive behavior when given the opportunity.",
		Period:     "1961",
		People:     "Albert Bandura",
		Hypothesis: "Children who watch an adult act aggressively will imitate that aggression.",
		Rejected:   false,
		Category:   "aggression",
	},
	{
		Name:       "Asch Conformity Experiments",
		Info:       "Participants were asked to match line lengths in a group setting where confederates gave obviously wrong answers. About 75% of participants conformed to the incorrect group answer at least once.",
		Period:     "1951",
		People:     "Solomon Asch",
		Hypothesis: "People will conform to a unanimous majority even when the majority is obviously wrong.",
		Rejected:   false,
		Category:   "conformity",
	},
	{
		Name:       "Harlow's Monkey Experiments",
		Info:       "Infant monkeys were given a choice between a wire 'mother' with food and a soft cloth 'mother' without food. The monkeys overwhelmingly preferred the comfort of the cloth mother, challenging behaviorist theories.",
		Period:     "1958",
		People:     "Harry Harlow",
		Hypothesis: "Infant attachment depends on contact comfort rather than on feeding alone.",
		Rejected:   false,
		Category:   "attachment",
	},
	{
		Name:       "Marshmallow Test",
		Info:       "Children were offered a choice between one marshmallow immediately or two if they waited 15 minutes. Follow-up studies found that children who waited tended to have better life outcomes decades later.",
		Period:     "1972",
		People:     "Walter Mischel",
		Hypothesis: "Children's ability to delay gratification depends on the strategies they use while waiting.",
		Rejected:   false,
		Category:   "motivation",
	},
	{
		Name:       "Robbers Cave Experiment",
		Info:       "Two groups of boys at a summer camp were put in competition, leading to hostility. Conflict was reduced when the groups had to work together on superordinate goals requiring cooperation.",
		Period:     "1954",
		People:     "Muzafer Sherif",
		Hypothesis: "Competition for scarce resources produces hostility between groups, and shared goals reduce it.",
		Rejected:   false,
		Category:   "social",
	},
	{
		Name:       "Bystander Effect Study",
		Info:       "Participants heard what they believed was someone having a seizure. When alone, 85% helped, but when they believed others were present, only 31% took action.",
		Period:     "1968",
		People:     "John Darley, Bibb Latané",
		Hypothesis: "The more bystanders are present, the less likely any one of them is to help.",
		Rejected:   false,
		Category:   "social",
	},
	{
		Name:       "Cognitive Dissonance Experiment",
		Info:       "Participants performed boring tasks then were paid either $1 or $20 to tell the next participant it was enjoyable. Those paid $1 rated the task more enjoyable, having less justification for lying.",
		Period:     "1959",
		People:     "Leon Festinger, James Carlsmith",
		Hypothesis: "People paid less to lie will change their attitude more to match what they said.",
		Rejected:   false,
		Category:   "cognitive",
	},
}

var cannedTheories = []cannedRecord{
	{
		Name:     "Maslow's Hierarchy of Needs",
		Info:     "Human motivation is arranged as a pyramid of needs, from physiological survival up to self-actualization. Higher needs become motivating once lower ones are reasonably satisfied.",
		Period:   "1943",
		People:   "Abraham Maslow",
		Category: "humanistic",
	},
	{
		Name:     "Attachment Theory",
		Info:     "Early bonds between infants and caregivers shape emotional development and later relationships. Secure attachment gives a child a safe base from which to explore.",
		Period:   "1958",
		People:   "John Bowlby, Mary Ainsworth",
		Category: "attachment",
	},
	{
		Name:     "Cognitive Dissonance Theory",
		Info:     "Holding two conflicting beliefs or acting against one's beliefs creates discomfort. People reduce the discomfort by changing beliefs, behaviors or their interpretation of them.",
		Period:   "1957",
		People:   "Leon Festinger",
		Category: "cognitive",
	},
	{
		Name:     "Operant Conditioning",
		Info:     "Behavior is shaped by its consequences. Reinforced behaviors become more frequent while punished behaviors become less frequent.",
		Period:   "1938",
		People:   "B. F. Skinner",
		Category: "behavioral",
	},
	{
		Name:     "Theory of Cognitive Development",
		Info:     "Children move through four stages of thinking, from sensorimotor to formal operational. Each stage brings qualitatively new ways of understanding the world.",
		Period:   "1936",
		People:   "Jean Piaget",
		Category: "developmental",
	},
	{
		Name:     "Social Learning Theory",
		Info:     "People learn new behaviors by observing and imitating others. Whether a learned behavior is performed depends on the consequences the model is seen to receive.",
		Period:   "1977",
		People:   "Albert Bandura",
		Category: "learning",
	},
	{
		Name:     "Psychosexual Stages",
		Info:     "Personality develops through a series of childhood stages focused on different erogenous zones. Unresolved conflicts at any stage can leave lasting fixations.",
		Period:   "1905",
		People:   "Sigmund Freud",
		Category: "psychodynamic",
	},
	{
		Name:     "Big Five Personality Traits",
		Info:     "Personality can be described along five broad dimensions: openness, conscientiousness, extraversion, agreeableness and neuroticism.",
		Period:   "1961",
		People:   "Ernest Tupes, Raymond Christal",
		Category: "personality",
	},
	{
		Name:     "James-Lange Theory of Emotion",
		Info:     "Emotions arise from the perception of bodily changes. We feel afraid because we notice our heart racing, not the other way around.",
		Period:   "1884",
		People:   "William James, Carl Lange",
		Category: "emotional",
	},
	{
		Name:     "Self-Determination Theory",
		Info:     "People are driven by three innate needs: autonomy, competence and relatedness. Meeting them fosters intrinsic motivation and well-being.",
		Period:   "1985",
		People:   "Edward Deci, Richard Ryan",
		Category: "motivation",
	},
}

var categoryKeywords = []struct {
	Category string
	Words    []string
}{
	{"obedience", []string{"obedience", "obey", "authority", "shock"}},
	{"conformity", []string{"conform", "majority", "group pressure", "line length"}},
	{"attachment", []string{"attachment", "mother", "caregiver", "infant bond"}},
	{"aggression", []string{"aggress", "violen", "hostil"}},
	{"memory", []string{"memory", "recall", "remember", "forget"}},
	{"perception", []string{"percept", "visual", "illusion", "attention"}},
	{"developmental", []string{"child", "develop", "stage", "infant"}},
	{"learning", []string{"learn", "imitat", "observ"}},
	{"behavioral", []string{"condition", "reinforce", "reward", "punish", "stimulus"}},
	{"stress", []string{"stress", "anxiety", "fear"}},
	{"emotional", []string{"emotion", "feeling", "mood"}},
	{"motivation", []string{"motivat", "need", "goal", "gratification"}},
	{"personality", []string{"personality", "trait"}},
	{"humanistic", []string{"self-actualization", "humanistic", "growth"}},
	{"psychodynamic", []string{"unconscious", "freud", "psychoanaly"}},
	{"biological", []string{"brain", "neuro", "gene", "hormone"}},
	{"cognitive", []string{"cognit", "belief", "thinking", "dissonance"}},
	{"social", []string{"social", "bystander", "group", "prison", "crowd"}},
}

// Fallback is a deterministic offline Generator used when the model is unavailable or replies
// with something unusable
type Fallback struct {
	categories map[models.ContentType][]string
}

// NewFallback creates a fallback generator; categories restricts what Categorize may return
func NewFallback(categories map[models.ContentType][]string) *Fallback {
	return &Fallback{categories: categories}
}

func canned(t models.ContentType) []cannedRecord {
	if t == models.Theory {
		return cannedTheories
	}
	return cannedExperiments
}

// GenerateContent returns the first canned record not in exclude, or the first one when all
// are excluded
func (f *Fallback) GenerateContent(_ context.Context, t models.ContentType, exclude []string) (*models.Content, error) {
	excluded := make(map[string]bool, len(exclude))
	for _, name := range exclude {
		excluded[normalize(name)] = true
	}

	records := canned(t)
	pick := records[0]
	for _, r := range records {
		if !excluded[normalize(r.Name)] {
			pick = r
			break
		}
	}
	return pick.content(t), nil
}

func (r cannedRecord) content(t models.ContentType) *models.Content {
	c := &models.Content{
		Type:          t,
		Name:          r.Name,
		Info:          r.Info,
		Period:        r.Period,
		People:        r.People,
		SchemaVersion: models.CurrentSchemaVersion,
	}
	if t == models.Experiment {
		c.Hypothesis = r.Hypothesis
		c.Rejected = r.Rejected
	}
	return c
}

// Categorize uses the canned category for known records and keyword matching otherwise
func (f *Fallback) Categorize(_ context.Context, t models.ContentType, name, info string) (string, error) {
	for _, r := range canned(t) {
		if normalize(r.Name) == normalize(name) && f.allowed(t, r.Category) {
			return r.Category, nil
		}
	}

	text := strings.ToLower(name + " " + info)
	for _, k := range categoryKeywords {
		if !f.allowed(t, k.Category) {
			continue
		}
		for _, w := range k.Words {
			if strings.Contains(text, w) {
				return k.Category, nil
			}
		}
	}
	return "default", nil
}

func (f *Fallback) allowed(t models.ContentType, category string) bool {
	list, ok := f.categories[t]
	if !ok {
		return true
	}
	for _, c := range list {
		if c == category {
			return true
		}
	}
	return false
}

// CheckGuess accepts a guess sharing at least one significant word with the answer
func (f *Fallback) CheckGuess(_ context.Context, _ models.ContentType, guess, actual string) (models.Verdict, error) {
	if normalize(guess) != "" && normalize(guess) == normalize(actual) {
		return models.Verdict{Correct: true, Reasoning: "Exact match."}, nil
	}

	answerWords := make(map[string]bool)
	for _, w := range significantWords(actual) {
		answerWords[w] = true
	}
	for _, w := range significantWords(guess) {
		if answerWords[w] {
			return models.Verdict{Correct: true, Reasoning: "Your guess matches the key part of the name."}, nil
		}
	}
	return models.Verdict{Correct: false, Reasoning: "The answer was " + actual + "."}, nil
}

// GenerateHypothesis returns the canned hypothesis for known experiments and a generic one otherwise
func (f *Fallback) GenerateHypothesis(_ context.Context, name, _ string) (models.Hypothesis, error) {
	for _, r := range cannedExperiments {
		if normalize(r.Name) == normalize(name) {
			return models.Hypothesis{Text: r.Hypothesis, Rejected: r.Rejected}, nil
		}
	}
	return models.Hypothesis{
		Text:     "The researchers predicted that the conditions of " + name + " would change how participants behaved.",
		Rejected: false,
	}, nil
}

var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "of": true, "and": true, "in": true, "on": true,
	"experiment": true, "experiments": true, "study": true, "studies": true, "test": true,
	"theory": true, "effect": true, "s": true,
}

func normalize(s string) string {
	return strings.Join(words(s), " ")
}

func words(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func significantWords(s string) []string {
	var out []string
	for _, w := range words(s) {
		if len(w) >= 3 && !stopWords[w] {
			out = append(out, w)
		}
	}
	return out
}
