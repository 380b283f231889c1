package feed

import (
	"github.com/GoArmGo/Weplash/internal/auth"
	"github.com/GoArmGo/Weplash/internal/domain"
)

// Kind — вид ограничения ленты
type Kind int

const (
	// KindAll — лента без ограничений
	KindAll Kind = iota
	// KindEmpty — заведомо пустая страница
	KindEmpty
	// KindEditorial — редакционная коллекция кураторского аккаунта
	KindEditorial
	// KindFollowing — фото авторов, на которых подписан зритель
	KindFollowing
	// KindUploads — фото, загруженные пользователем
	KindUploads
	// KindLikes — фото, которые пользователь лайкнул
	KindLikes
	// KindCollection — именованная коллекция пользователя
	KindCollection
	// KindHashtag — фото с тегом
	KindHashtag
)

var kindNames = map[Kind]string{
	KindAll:        "all",
	KindEmpty:      "empty",
	KindEditorial:  "editorial",
	KindFollowing:  "following",
	KindUploads:    "uploads",
	KindLikes:      "likes",
	KindCollection: "collection",
	KindHashtag:    "hashtag",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Filter — описание выборки, которое исполняет слой хранения.
// Пользователь задаётся либо именем (чужая страница), либо UserID (сам зритель).
type Filter struct {
	Kind     Kind
	UserName string
	UserID   uint
	// Name — имя коллекции или тега
	Name  string
	Page  int
	Limit int
}

// Offset — номер первой записи страницы
func (f Filter) Offset() int {
	return f.Page * f.Limit
}

type rule struct {
	applies func(Params) bool
	build   func(Params, auth.Viewer) (Filter, error)
}

// rules проверяются сверху вниз, срабатывает первое подходящее
var rules = []rule{
	{
		applies: func(p Params) bool { return p.Category != "" },
		build:   categoryFilter,
	},
	{
		applies: func(p Params) bool { return p.User != "" },
		build: func(p Params, _ auth.Viewer) (Filter, error) {
			return userScoped(Filter{UserName: p.User}, p.UserCategory), nil
		},
	},
	{
		applies: func(p Params) bool { return p.UserCategory != "" },
		build: func(p Params, viewer auth.Viewer) (Filter, error) {
			viewerID, ok := viewer.UserID()
			if !ok {
				return Filter{}, domain.ErrUnauthorized
			}
			return userScoped(Filter{UserID: viewerID}, p.UserCategory), nil
		},
	},
	{
		applies: func(p Params) bool { return p.Hashtag != "" },
		build: func(p Params, _ auth.Viewer) (Filter, error) {
			return Filter{Kind: KindHashtag, Name: p.Hashtag}, nil
		},
	},
}

// Build выбирает ограничение ленты по параметрам и зрителю
func Build(p Params, viewer auth.Viewer) (Filter, error) {
	f := Filter{Kind: KindAll}
	for _, r := range rules {
		if !r.applies(p) {
			continue
		}
		var err error
		if f, err = r.build(p, viewer); err != nil {
			return Filter{}, err
		}
		break
	}

	f.Page = p.Page
	f.Limit = p.Limit
	if f.Limit <= 0 {
		f.Limit = DefaultLimit
	}
	return f, nil
}

func categoryFilter(p Params, viewer auth.Viewer) (Filter, error) {
	if p.Category != CategoryFollowing {
		return Filter{Kind: KindEditorial, Name: p.Category}, nil
	}
	viewerID, ok := viewer.UserID()
	if !ok {
		// аноним ни на кого не подписан
		return Filter{Kind: KindEmpty}, nil
	}
	return Filter{Kind: KindFollowing, UserID: viewerID}, nil
}

func userScoped(f Filter, userCategory string) Filter {
	switch userCategory {
	case "", UserCategoryPhotos:
		f.Kind = KindUploads
	case UserCategoryLikes:
		f.Kind = KindLikes
	default:
		f.Kind = KindCollection
		f.Name = userCategory
	}
	return f
}
